package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/importer"
	"github.com/akarolczak/critpath/internal/repository"
)

type importService struct {
	schedules repository.ScheduleRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewImportService(schedules repository.ScheduleRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		schedules: schedules,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportSchedule(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, err
	}
	return s.ImportScheduleFromSchema(ctx, schema)
}

// ImportScheduleFromSchema validates, converts and persists a whole schedule
// in one transaction. The new schedule lands in draft with recompute pending.
func (s *importService) ImportScheduleFromSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	startedAt := time.Now()
	defer func() {
		fields := map[string]any{"schedule_code": strings.ToUpper(schema.Schedule.Code)}
		if result != nil {
			fields["activities"] = result.ActivityCount
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import_schedule",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(schema)
	if err != nil {
		return nil, err
	}

	existing, err := s.schedules.GetByCode(ctx, generated.Schedule.Code)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("schedule code %q already exists", generated.Schedule.Code)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		schedules := repository.NewSQLiteScheduleRepo(tx)
		nodes := repository.NewSQLiteWbsNodeRepo(tx)
		activities := repository.NewSQLiteActivityRepo(tx)
		relationships := repository.NewSQLiteRelationshipRepo(tx)
		resources := repository.NewSQLiteResourceRepo(tx)
		assignments := repository.NewSQLiteAssignmentRepo(tx)

		if err := schedules.Create(ctx, generated.Schedule); err != nil {
			return err
		}
		// WBS nodes arrive parents first, which the parent foreign key
		// needs.
		for _, n := range generated.WbsNodes {
			if err := nodes.Create(ctx, n); err != nil {
				return err
			}
		}
		for _, a := range generated.Activities {
			if err := activities.Create(ctx, a); err != nil {
				return err
			}
		}
		for _, rel := range generated.Relationships {
			if err := relationships.Create(ctx, rel); err != nil {
				return err
			}
		}
		for _, res := range generated.Resources {
			if err := resources.Create(ctx, res); err != nil {
				return err
			}
		}
		for _, asg := range generated.Assignments {
			if err := assignments.Upsert(ctx, asg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persisting imported schedule: %w", err)
	}

	return &ImportResult{
		Schedule:          generated.Schedule,
		WbsCount:          len(generated.WbsNodes),
		ActivityCount:     len(generated.Activities),
		RelationshipCount: len(generated.Relationships),
		ResourceCount:     len(generated.Resources),
		AssignmentCount:   len(generated.Assignments),
	}, nil
}

// formatValidationErrors folds every validation failure into one error so the
// user sees the whole list at once.
func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
