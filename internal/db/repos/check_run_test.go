package repos

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/pitests/internal/db/models"
)

// DBRepositoryTestSuite provides a base test suite for repository tests
type DBRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	runRepo *CheckRunRepository
}

func (s *DBRepositoryTestSuite) SetupTest() {
	// A named in-memory database per test keeps runs from leaking between tests
	dsn := "file:" + strings.ReplaceAll(s.T().Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	err = db.AutoMigrate(&models.CheckRun{}, &models.CheckResult{})
	require.NoError(s.T(), err, "Failed to run database migrations")

	s.db = db
	s.runRepo = NewCheckRunRepository(s.db)
	s.ctx = context.Background()
}

func (s *DBRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *DBRepositoryTestSuite) createTestRun(host string, started time.Time, outcomes ...models.Outcome) *models.CheckRun {
	run := &models.CheckRun{
		Host:       host,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
	for i, o := range outcomes {
		run.Results = append(run.Results, models.CheckResult{
			Name:       string(rune('a'+i)) + "-check",
			Outcome:    o,
			DurationMS: int64(10 * (i + 1)),
		})
	}
	s.Require().NoError(s.runRepo.Create(s.ctx, run))
	return run
}

func TestCheckRunRepository(t *testing.T) {
	suite.Run(t, new(DBRepositoryTestSuite))
}

func (s *DBRepositoryTestSuite) TestCreateAndGet() {
	now := time.Now().UTC()
	run := s.createTestRun("piwebapi.lab", now, models.OutcomePassed, models.OutcomeFailed, models.OutcomeSkipped)
	s.NotZero(run.ID)
	s.Equal(1, run.Passed)
	s.Equal(1, run.Failed)
	s.Equal(1, run.Skipped)

	got, err := s.runRepo.Get(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Equal("piwebapi.lab", got.Host)
	s.Require().Len(got.Results, 3)
	s.Equal("a-check", got.Results[0].Name)
	s.Equal(models.OutcomeFailed, got.Results[1].Outcome)
	s.False(got.Succeeded())
}

func (s *DBRepositoryTestSuite) TestCreateRejectsInvalidRun() {
	err := s.runRepo.Create(s.ctx, &models.CheckRun{})
	s.ErrorContains(err, "invalid check run")
}

func (s *DBRepositoryTestSuite) TestGetMissing() {
	_, err := s.runRepo.Get(s.ctx, 4242)
	s.ErrorIs(err, ErrNotFound)
}

func (s *DBRepositoryTestSuite) TestListNewestFirst() {
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		s.createTestRun("piwebapi.lab", base.Add(time.Duration(i)*time.Minute), models.OutcomePassed)
	}
	s.createTestRun("other.lab", base.Add(10*time.Minute), models.OutcomePassed)

	runs, err := s.runRepo.List(s.ctx, &models.ListOptions{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(runs, 2)
	s.Equal("other.lab", runs[0].Host)
	s.True(runs[0].StartedAt.After(runs[1].StartedAt))

	runs, err = s.runRepo.List(s.ctx, &models.ListOptions{Host: "piwebapi.lab"})
	s.Require().NoError(err)
	s.Len(runs, 3)

	runs, err = s.runRepo.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(runs, 4)
}

func (s *DBRepositoryTestSuite) TestLatest() {
	base := time.Now().UTC().Add(-time.Hour)
	s.createTestRun("piwebapi.lab", base, models.OutcomeFailed)
	latest := s.createTestRun("piwebapi.lab", base.Add(time.Minute), models.OutcomePassed, models.OutcomePassed)

	got, err := s.runRepo.Latest(s.ctx, "piwebapi.lab")
	s.Require().NoError(err)
	s.Equal(latest.ID, got.ID)
	s.Len(got.Results, 2)

	_, err = s.runRepo.Latest(s.ctx, "nowhere")
	s.ErrorIs(err, ErrNotFound)
}

func (s *DBRepositoryTestSuite) TestDelete() {
	run := s.createTestRun("piwebapi.lab", time.Now().UTC(), models.OutcomePassed)
	s.Require().NoError(s.runRepo.Delete(s.ctx, run.ID))

	_, err := s.runRepo.Get(s.ctx, run.ID)
	s.ErrorIs(err, ErrNotFound)

	var results int64
	s.Require().NoError(s.db.Model(&models.CheckResult{}).Where("check_run_id = ?", run.ID).Count(&results).Error)
	s.Zero(results)

	s.ErrorIs(s.runRepo.Delete(s.ctx, run.ID), ErrNotFound)
}
