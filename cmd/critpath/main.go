package main

import (
	"fmt"
	"os"

	"github.com/akarolczak/critpath/internal/cli"
	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/akarolczak/critpath/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.critpath/critpath.db
	dbPath, err := db.DefaultPath()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	scheduleRepo := repository.NewSQLiteScheduleRepo(database)
	wbsRepo := repository.NewSQLiteWbsNodeRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	relationshipRepo := repository.NewSQLiteRelationshipRepo(database)
	resourceRepo := repository.NewSQLiteResourceRepo(database)
	assignmentRepo := repository.NewSQLiteAssignmentRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// CRITPATH_LOG=1 traces use-case execution to stderr.
	var observers []service.UseCaseObserver
	if os.Getenv("CRITPATH_LOG") == "1" {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	app := &cli.App{
		Schedules:     service.NewScheduleService(scheduleRepo),
		Wbs:           service.NewWbsService(scheduleRepo, wbsRepo, activityRepo),
		Activities:    service.NewActivityService(scheduleRepo, wbsRepo, activityRepo),
		Relationships: service.NewRelationshipService(scheduleRepo, activityRepo, relationshipRepo),
		Resources:     service.NewResourceService(scheduleRepo, activityRepo, resourceRepo, assignmentRepo),
		Recompute:     service.NewRecomputeService(scheduleRepo, wbsRepo, activityRepo, relationshipRepo, uow, observers...),
		Status:        service.NewStatusService(scheduleRepo, wbsRepo, activityRepo, relationshipRepo, resourceRepo, assignmentRepo),
		Report:        service.NewReportService(scheduleRepo, wbsRepo, activityRepo, resourceRepo, assignmentRepo),
		Import:        service.NewImportService(scheduleRepo, uow, observers...),
	}

	// Detect interactive terminal for the explore and wizard entrypoints.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
