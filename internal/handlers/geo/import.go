// handlers/import.go
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/evn/toopath_backendl/internal/pkg/response"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type ImportRequest struct {
	GoogleSheetURL string `json:"google_sheet_url,omitempty"`
}

// ImportTrackLocations — массовая загрузка точек маршрута: либо xlsx
// файлом (multipart), либо ссылкой на Google Sheets (JSON). Первая
// строка — заголовок, далее колонки: широта, долгота.
func (h *GeoTrackHandler) ImportTrackLocations(w http.ResponseWriter, r *http.Request) {
	track, ok := h.ownedTrack(w, r)
	if !ok {
		return
	}

	var rows [][]string
	var err error

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var req ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
			return
		}
		if req.GoogleSheetURL == "" {
			response.RespondWithError(w, http.StatusBadRequest, "google_sheet_url is required")
			return
		}
		rows, err = readFromGoogleSheet(r.Context(), req.GoogleSheetURL)
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Failed to read Google Sheet: "+err.Error())
			return
		}
	} else {
		file, _, err := r.FormFile("file")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "File not found")
			return
		}
		defer file.Close()

		xlsx, err := excelize.OpenReader(file)
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid Excel file")
			return
		}
		rows, err = xlsx.GetRows("Sheet1")
		if err != nil {
			sheetNames := xlsx.GetSheetList()
			if len(sheetNames) == 0 {
				response.RespondWithError(w, http.StatusBadRequest, "Empty Excel file")
				return
			}
			rows, err = xlsx.GetRows(sheetNames[0])
			if err != nil {
				response.RespondWithError(w, http.StatusInternalServerError, "Failed to read sheet")
				return
			}
		}
	}

	if len(rows) < 2 {
		response.RespondWithError(w, http.StatusBadRequest, "File must contain a header and at least one row")
		return
	}

	imported, err := h.service.ImportTrackLocations(r.Context(), track.ID, rows)
	if err != nil {
		response.RespondWithAPIError(w, err)
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func readFromGoogleSheet(ctx context.Context, url string) ([][]string, error) {
	re := regexp.MustCompile(`\/d\/([a-zA-Z0-9-_]+)`)
	matches := re.FindStringSubmatch(url)
	if len(matches) < 2 {
		return nil, fmt.Errorf("invalid Google Sheets URL")
	}
	spreadsheetID := matches[1]

	srv, err := sheets.NewService(ctx, option.WithCredentialsFile("credentials.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to init Google API: %w", err)
	}

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, "A1:B10000").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	var rows [][]string
	for _, row := range resp.Values {
		var strRow []string
		for _, cell := range row {
			strRow = append(strRow, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, strRow)
	}
	return rows, nil
}
