package infra_postgres_match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type MatchInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	mock   sqlmock.Sqlmock
	driver *Driver
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &resources{
		mock:   mock,
		driver: New(sqlx.NewDb(db, "sqlmock")),
		ctx:    context.Background(),
	}
}

func validRecord() model.MatchRecord {
	return model.MatchRecord{
		RoomID:    "ABC123-DEF456-ROOM",
		ItemID:    42,
		Title:     "X",
		MediaType: model.MediaMoviePopular,
		MatchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (suite *MatchInfraUnitSuite) TestAppend(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources, rec model.MatchRecord)
		expectError   bool
		errorContains string
	}{
		{
			name: "Should insert a match",
			setupMocks: func(r *resources, rec model.MatchRecord) {
				r.mock.ExpectExec("INSERT INTO room_matches").
					WithArgs(string(rec.RoomID), rec.ItemID, rec.Title, string(rec.MediaType), rec.MatchedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "Should tolerate a repeated match",
			setupMocks: func(r *resources, rec model.MatchRecord) {
				r.mock.ExpectExec("INSERT INTO room_matches").
					WithArgs(string(rec.RoomID), rec.ItemID, rec.Title, string(rec.MediaType), rec.MatchedAt).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name: "Should return error when insert fails",
			setupMocks: func(r *resources, rec model.MatchRecord) {
				r.mock.ExpectExec("INSERT INTO room_matches").
					WillReturnError(errors.New("insert error"))
			},
			expectError:   true,
			errorContains: "insert error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			rec := validRecord()
			tc.setupMocks(r, rec)

			err := r.driver.Append(r.ctx, rec)

			if tc.expectError {
				assert.Error(t, err)
				assert.ErrorContains(t, err, tc.errorContains)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *MatchInfraUnitSuite) TestEnsureSchema(t provider.T) {
	t.Parallel()

	r := initResources(t)
	r.mock.ExpectExec("CREATE TABLE IF NOT EXISTS room_matches").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, r.driver.EnsureSchema(r.ctx))
	assert.NoError(t, r.mock.ExpectationsWereMet())
}

func TestMatchInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(MatchInfraUnitSuite))
}
