package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resto-pos/kds"
	"resto-pos/models"
	"resto-pos/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> register a new table (admin).
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number uint `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		Number: req.Number,
		Status: models.TableAvailable,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	kds.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %d created", table.Number)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list every table ordered by number.
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Order("number").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail of one table.
func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// OpenSession seats guests at a table: creates an active session and
// flips the table to occupied, atomically. The single-active-session
// invariant is re-checked inside the transaction, not just via the
// table status, so concurrent opens cannot both commit.
func (tc *TableController) OpenSession(c *gin.Context) {
	var session models.TableSession
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, c.Param("table_id")).Error; err != nil {
			return err
		}
		if table.Status == models.TableOccupied {
			return ErrTableOccupied
		}

		var active int64
		if err := tx.Model(&models.TableSession{}).
			Where("table_id = ? AND status = ?", table.ID, models.SessionActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveSession
		}

		session = models.TableSession{
			TableID:   table.ID,
			Status:    models.SessionActive,
			StartedAt: time.Now(),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		table.Status = models.TableOccupied
		if err := tx.Save(&table).Error; err != nil {
			return err
		}
		session.Table = table
		return nil
	})
	if err != nil {
		switch err {
		case ErrTableOccupied, ErrActiveSession:
			utils.RespondError(c, http.StatusConflict, err)
		case gorm.ErrRecordNotFound:
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	kds.BroadcastSessionEvent(kds.EventSessionOpened, session)
	utils.InfoLogger.Printf("Session %d opened on table %d", session.ID, session.Table.Number)
	utils.RespondJSON(c, http.StatusCreated, "Session opened", session)
}

// CloseSession settles a table: closes its active session and frees the
// table, atomically. Fails when the table has no active session.
func (tc *TableController) CloseSession(c *gin.Context) {
	var session models.TableSession
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, c.Param("table_id")).Error; err != nil {
			return err
		}

		err := tx.Where("table_id = ? AND status = ?", table.ID, models.SessionActive).
			First(&session).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNoActiveSession
			}
			return err
		}

		now := time.Now()
		session.Status = models.SessionClosed
		session.EndedAt = &now
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		table.Status = models.TableAvailable
		if err := tx.Save(&table).Error; err != nil {
			return err
		}
		session.Table = table
		return nil
	})
	if err != nil {
		switch err {
		case ErrNoActiveSession:
			utils.RespondError(c, http.StatusConflict, err)
		case gorm.ErrRecordNotFound:
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	kds.BroadcastSessionEvent(kds.EventSessionClosed, session)
	utils.InfoLogger.Printf("Session %d closed, table %d freed", session.ID, session.Table.Number)
	utils.RespondJSON(c, http.StatusOK, "Session closed", session)
}

// GetSession -> one session with its orders and items.
func (tc *TableController) GetSession(c *gin.Context) {
	var session models.TableSession
	err := tc.DB.
		Preload("Table").
		Preload("Orders.Items.MenuItem").
		Preload("Invoice").
		First(&session, c.Param("session_id")).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// ListActiveSessions -> every currently seated table.
func (tc *TableController) ListActiveSessions(c *gin.Context) {
	var sessions []models.TableSession
	err := tc.DB.
		Where("status = ?", models.SessionActive).
		Preload("Table").
		Order("started_at").
		Find(&sessions).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}

// RequestBill flags an active session for the cashier queue.
func (tc *TableController) RequestBill(c *gin.Context) {
	var session models.TableSession
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").First(&session, c.Param("session_id")).Error; err != nil {
			return err
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}
		if session.BillRequested {
			return nil // already flagged, keep the original timestamp
		}
		now := time.Now()
		session.BillRequested = true
		session.BillRequestedAt = &now
		return tx.Model(&session).Updates(map[string]interface{}{
			"bill_requested":    true,
			"bill_requested_at": now,
		}).Error
	})
	if err != nil {
		switch err {
		case ErrSessionNotActive:
			utils.RespondError(c, http.StatusConflict, err)
		case gorm.ErrRecordNotFound:
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	kds.BroadcastBillRequested(session)
	utils.RespondJSON(c, http.StatusOK, "Bill requested", session)
}
