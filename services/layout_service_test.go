package services

import (
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/SuperB747/emotion-notepad-sub000/board"
	"github.com/SuperB747/emotion-notepad-sub000/models"
	"github.com/SuperB747/emotion-notepad-sub000/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGetLayout_NotFound(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT (.+) FROM "layouts" WHERE scope_key = \$1 AND user_id = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)

	layoutService := &LayoutService{}
	_, err := layoutService.GetLayout(db, uuid.New(), models.RootScope)
	assert.Equal(t, ErrLayoutNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLayout_Success(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	userID := uuid.New()
	positions, _ := json.Marshal(map[string]board.Position{
		"a": {X: 10, Y: 20, ZIndex: 1},
	})

	mock.ExpectQuery(`SELECT (.+) FROM "layouts" WHERE scope_key = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"scope_key", "user_id", "name", "positions", "ocd_mode"}).
			AddRow(models.RootScope, userID.String(), "All Notes", positions, true))

	layoutService := &LayoutService{}
	layout, err := layoutService.GetLayout(db, userID, models.RootScope)
	assert.NoError(t, err)
	assert.True(t, layout.OCDMode)

	decoded := make(map[string]board.Position)
	assert.NoError(t, json.Unmarshal(layout.Positions, &decoded))
	assert.Equal(t, 10.0, decoded["a"].X)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPositions_EmptyIsNoop(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	layoutService := &LayoutService{}
	err := layoutService.PatchPositions(db, uuid.New(), models.RootScope, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLayout_NotFound(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "layouts"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	layoutService := &LayoutService{}
	err := layoutService.DeleteLayout(db, uuid.New(), models.RootScope)
	assert.Equal(t, ErrLayoutNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
