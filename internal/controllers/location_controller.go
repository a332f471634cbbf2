package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
)

// ListLocations returns every captured sample, newest first.
func (a *API) ListLocations(c *gin.Context) {
	samples, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing locations: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": samples})
}

// ExportGeoJSON renders the captured samples as a GeoJSON FeatureCollection,
// one Point feature per sample.
func (a *API) ExportGeoJSON(c *gin.Context) {
	samples, err := a.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing locations: " + err.Error()})
		return
	}

	fc := &gjson.FeatureCollection{Features: make([]*gjson.Feature, 0, len(samples))}
	for _, sample := range samples {
		fc.Features = append(fc.Features, &gjson.Feature{
			ID:       strconv.FormatUint(uint64(sample.ID), 10),
			Geometry: geom.NewPointFlat(geom.XY, []float64{sample.Longitude, sample.Latitude}),
			Properties: map[string]interface{}{
				"clientTimestamp": sample.CapturedAt,
				"uploaded":        sample.Uploaded,
				"isBackground":    sample.IsBackground,
			},
		})
	}

	body, err := json.Marshal(fc)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode GeoJSON export.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode GeoJSON"})
		return
	}

	c.Data(http.StatusOK, "application/geo+json", body)
}

// ResetLocations wipes the local store. Explicit reset only; logout does not
// touch captured samples so they can re-upload after the next login.
func (a *API) ResetLocations(c *gin.Context) {
	if err := a.Store.ClearAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset store: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location store cleared"})
}
