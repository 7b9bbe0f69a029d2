// handlers/export.go
package geo

import (
	"fmt"
	"log"
	"net/http"

	"github.com/evn/toopath_backendl/internal/pkg/response"
	"github.com/xuri/excelize/v2"
)

// ExportTrackLocations отдает историю маршрута файлом .xlsx.
// Порядок колонок повторяет формат импорта: широта, долгота.
func (h *GeoTrackHandler) ExportTrackLocations(w http.ResponseWriter, r *http.Request) {
	track, ok := h.ownedTrack(w, r)
	if !ok {
		return
	}

	locations, err := h.service.TrackLocations(r.Context(), track.ID)
	if err != nil {
		log.Printf("Не удалось получить точки маршрута %d: %v", track.ID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Sheet1"
	file.SetCellValue(sheet, "A1", "Latitude")
	file.SetCellValue(sheet, "B1", "Longitude")
	file.SetCellValue(sheet, "C1", "Created At")

	for i, loc := range locations {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%d", row), loc.Point.X)
		file.SetCellValue(sheet, fmt.Sprintf("B%d", row), loc.Point.Y)
		file.SetCellValue(sheet, fmt.Sprintf("C%d", row), loc.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="track_%d_locations.xlsx"`, track.ID))
	if err := file.Write(w); err != nil {
		log.Printf("Не удалось записать файл экспорта: %v", err)
	}
}
