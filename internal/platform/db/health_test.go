package db

import (
	"fmt"
	"net/http"
	"testing"
)

func sampleStats() *PoolStats {
	return &PoolStats{
		TotalConns:      8,
		IdleConns:       6,
		AcquiredConns:   2,
		MaxConns:        20,
		AcquireCount:    340,
		AcquireDuration: "1.2s",
		Healthy:         true,
	}
}

func TestHealthReport_Healthy(t *testing.T) {
	status, body := healthReport(nil, sampleStats())
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	stats, ok := body["pool"].(*PoolStats)
	if !ok || !stats.Healthy {
		t.Errorf("pool = %+v", body["pool"])
	}
	if _, present := body["error"]; present {
		t.Error("healthy report must not carry an error field")
	}
}

func TestHealthReport_DatabaseDown(t *testing.T) {
	stats := sampleStats()
	status, body := healthReport(fmt.Errorf("connection refused"), stats)
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
	if body["status"] != "unhealthy" || body["error"] != "connection refused" {
		t.Errorf("body = %v", body)
	}
	// The snapshot may have been taken before the ping failed; the report
	// overrides it.
	if stats.Healthy {
		t.Error("failed ping must force Healthy to false")
	}
}
