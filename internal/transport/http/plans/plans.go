package plans

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arvenlabs/billing-svc/internal/service/models/plan"
)

// ListPlans returns the maintenance plan catalog.
func ListPlans(w http.ResponseWriter, _ *http.Request) {
	if err := json.NewEncoder(w).Encode(plan.AllPlans); err != nil {
		slog.Error("Error sending response for list plans", "error", err)
	}
}
