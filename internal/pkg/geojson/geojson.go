// Package geojson — кодек GeoJSON Feature для точечных записей.
// Кодек проверяет только структуру документа; границы координат
// проверяются отдельно пакетом validation.
package geojson

import (
	"encoding/json"
	"io"

	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
)

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// DecodePoint читает GeoJSON Feature с геометрией Point.
// Properties возвращаются как есть: что из них принять, решает обработчик.
func DecodePoint(r io.Reader) (models.Point, map[string]interface{}, error) {
	var feature Feature
	if err := json.NewDecoder(r).Decode(&feature); err != nil {
		return models.Point{}, nil, apierrors.NewNonFieldError("Invalid GeoJSON payload.")
	}
	if feature.Type != "Feature" {
		return models.Point{}, nil, apierrors.NewFieldError("type", `Expected "Feature".`)
	}
	if feature.Geometry.Type != "Point" {
		return models.Point{}, nil, apierrors.NewFieldError("geometry", `Expected a "Point" geometry.`)
	}
	if len(feature.Geometry.Coordinates) != 2 {
		return models.Point{}, nil, apierrors.NewFieldError("geometry", "Coordinates must contain exactly two values.")
	}

	point := models.Point{
		X: feature.Geometry.Coordinates[0],
		Y: feature.Geometry.Coordinates[1],
	}
	return point, feature.Properties, nil
}

// PointFeature собирает Feature из точки и набора свойств.
func PointFeature(p models.Point, properties map[string]interface{}) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{p.X, p.Y},
		},
		Properties: properties,
	}
}

func Collection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
