package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akarolczak/critpath/internal/repository"
)

// resolveScheduleID resolves a schedule identifier which can be a schedule
// code, a full UUID, or a unique UUID prefix.
func resolveScheduleID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("schedule is required")
	}

	// Code match first; codes are stored uppercase and compared
	// case-insensitively.
	if s, err := app.Schedules.GetByCode(ctx, input); err == nil {
		return s.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	// Then by ID, full or shortened. A full UUID is its own prefix, so one
	// query covers both.
	matches, err := app.Schedules.ListByIDPrefix(ctx, input)
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("schedule not found: %q", input)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("schedule ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveActivityID resolves an activity identifier within a schedule: an
// activity code, a full UUID, or a unique UUID prefix.
func resolveActivityID(ctx context.Context, app *App, scheduleID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("activity is required")
	}

	if a, err := app.Activities.GetByCode(ctx, scheduleID, input); err == nil {
		return a.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	acts, err := app.Activities.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, a := range acts {
		if a.ID == input {
			return a.ID, nil
		}
		if strings.HasPrefix(a.ID, input) {
			matches = append(matches, a.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("activity not found in schedule: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("activity ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveWbsNodeID resolves a WBS node by outline code or UUID within a
// schedule.
func resolveWbsNodeID(ctx context.Context, app *App, scheduleID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("wbs node is required")
	}

	nodes, err := app.Wbs.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return "", err
	}

	for _, n := range nodes {
		if strings.EqualFold(n.Code, input) || n.ID == input {
			return n.ID, nil
		}
	}

	var matches []string
	for _, n := range nodes {
		if strings.HasPrefix(n.ID, input) {
			matches = append(matches, n.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("wbs node not found in schedule: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("wbs node ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveResourceID resolves a resource by code or UUID within a schedule.
func resolveResourceID(ctx context.Context, app *App, scheduleID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("resource is required")
	}

	if r, err := app.Resources.GetByCode(ctx, scheduleID, input); err == nil {
		return r.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	resources, err := app.Resources.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, r := range resources {
		if r.ID == input {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, input) {
			matches = append(matches, r.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("resource not found in schedule: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("resource ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
