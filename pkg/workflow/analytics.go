package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

// Analytics summarizes the stored executions of one workflow.
type Analytics struct {
	WorkflowID  string  `json:"workflow_id"`
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	Running     int     `json:"running"`
	SuccessRate float64 `json:"success_rate"`
}

// AnalyticsService computes execution statistics from the store.
type AnalyticsService struct {
	store store.Store
}

func NewAnalyticsService(st store.Store) *AnalyticsService {
	return &AnalyticsService{store: st}
}

// ForWorkflow aggregates executions started within the time range ending
// now. A zero range means all history.
func (s *AnalyticsService) ForWorkflow(ctx context.Context, workflowID string, timeRange time.Duration) (*Analytics, error) {
	since := time.Time{}
	if timeRange > 0 {
		since = time.Now().UTC().Add(-timeRange)
	}

	executions, err := s.store.ListExecutions(ctx, workflowID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions for %s: %w", workflowID, err)
	}

	analytics := &Analytics{WorkflowID: workflowID, Total: len(executions)}

	for _, execution := range executions {
		switch execution.Status {
		case models.ExecutionStatusCompleted:
			analytics.Successful++
		case models.ExecutionStatusFailed:
			analytics.Failed++
		case models.ExecutionStatusPending, models.ExecutionStatusRunning:
			analytics.Running++
		}
	}

	finished := analytics.Successful + analytics.Failed
	if finished > 0 {
		analytics.SuccessRate = float64(analytics.Successful) / float64(finished)
	}

	return analytics, nil
}
