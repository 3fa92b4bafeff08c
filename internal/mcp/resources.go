// ABOUTME: MCP resource implementations for the workout log.
// ABOUTME: Provides gymlog://recent, gymlog://exercises, and gymlog://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
)

const (
	recentURI    = "gymlog://recent"
	exercisesURI = "gymlog://exercises"
	summaryURI   = "gymlog://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Workouts",
		Description: "Last 5 workouts with their exercises and sets",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         exercisesURI,
		Name:        "Exercise Catalog",
		Description: "Every known exercise with how often and when it was last trained",
		MIMEType:    "application/json",
	}, s.handleExercisesResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Training Summary",
		Description: "Workout counts, volume over the last 7 and 30 days, and row counts",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.repo.ListWorkouts(ctx, storage.WorkoutFilter{UserID: &s.user.ID, Limit: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	details := make([]workoutDetail, 0, len(workouts))
	for _, w := range workouts {
		detail, err := s.repo.GetWorkoutDetail(ctx, w.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to load workout: %w", err)
		}
		details = append(details, toWorkoutDetail(detail))
	}

	return jsonResource(recentURI, map[string]any{
		"user":     s.user.DisplayName(),
		"workouts": details,
	})
}

type exerciseStats struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TimesUsed   int    `json:"times_used"`
	LastTrained string `json:"last_trained,omitempty"`
}

func (s *Server) handleExercisesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	exercises, err := s.repo.ListExercises(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	stats := make([]exerciseStats, 0, len(exercises))
	for _, e := range exercises {
		withEntries, err := s.repo.GetExerciseWithWorkoutExercises(ctx, e.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to load exercise history: %w", err)
		}

		st := exerciseStats{ID: shortID(e.ID), Name: e.Name}
		for _, we := range withEntries.WorkoutExercises {
			if we.Workout == nil || we.Workout.UserID != s.user.ID {
				continue
			}
			st.TimesUsed++
			if st.LastTrained == "" {
				st.LastTrained = we.Workout.DateString()
			}
		}
		stats = append(stats, st)
	}

	return jsonResource(exercisesURI, map[string]any{
		"exercises": stats,
		"count":     len(stats),
	})
}

type periodSummary struct {
	Workouts int    `json:"workouts"`
	Sets     int    `json:"sets"`
	Volume   string `json:"volume"`
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := models.TruncateDate(time.Now().UTC())
	monthAgo := today.AddDate(0, 0, -29)
	weekAgo := today.AddDate(0, 0, -6)

	workouts, err := s.repo.ListWorkouts(ctx, storage.WorkoutFilter{UserID: &s.user.ID, From: &monthAgo})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	week := periodSummary{}
	month := periodSummary{}
	weekVolume, monthVolume := decimal.Zero, decimal.Zero
	topSets := make(map[string]decimal.Decimal)

	for _, w := range workouts {
		detail, err := s.repo.GetWorkoutDetail(ctx, w.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to load workout: %w", err)
		}
		inWeek := !detail.Date.Before(weekAgo)

		month.Workouts++
		if inWeek {
			week.Workouts++
		}
		for _, we := range detail.WorkoutExercises {
			for _, set := range we.Sets {
				if !set.Completed {
					continue
				}
				month.Sets++
				monthVolume = monthVolume.Add(set.Volume())
				if inWeek {
					week.Sets++
					weekVolume = weekVolume.Add(set.Volume())
				}
				if set.Weight != nil {
					name := we.ExerciseName()
					if best, ok := topSets[name]; !ok || set.Weight.GreaterThan(best) {
						topSets[name] = *set.Weight
					}
				}
			}
		}
	}
	week.Volume = weekVolume.StringFixed(models.WeightScale)
	month.Volume = monthVolume.StringFixed(models.WeightScale)

	names := make([]string, 0, len(topSets))
	for name := range topSets {
		names = append(names, name)
	}
	sort.Strings(names)
	heaviest := make([]map[string]string, 0, len(names))
	for _, name := range names {
		heaviest = append(heaviest, map[string]string{
			"exercise": name,
			"weight":   topSets[name].StringFixed(models.WeightScale),
		})
	}

	counts, err := s.repo.CountRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	return jsonResource(summaryURI, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"user":         s.user.DisplayName(),
		"last_7_days":  week,
		"last_30_days": month,
		"heaviest_30d": heaviest,
		"table_rows":   counts,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
