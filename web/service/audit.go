package service

import (
	"webforge/database"
	"webforge/database/model"
	"webforge/logger"

	"github.com/goccy/go-json"
)

// AuditService appends and reads the per-website audit log. Entries are
// append-only; nothing here updates or deletes them.
type AuditService struct{}

// Log appends one entry. Failures are logged and swallowed so audit writes
// never fail the operation they describe.
func (s *AuditService) Log(websiteId int, action string, details map[string]any) {
	db := database.GetDB()

	detailsJSON := ""
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			logger.Warning("failed to marshal audit details:", err)
		} else {
			detailsJSON = string(data)
		}
	}

	entry := model.WebsiteLog{
		WebsiteId: websiteId,
		Action:    action,
		Details:   detailsJSON,
	}
	if err := db.Create(&entry).Error; err != nil {
		logger.Warningf("failed to write audit log: website=%d action=%s err=%v", websiteId, action, err)
	}
}

// GetLogs returns a website's audit entries, newest first.
func (s *AuditService) GetLogs(websiteId int) ([]model.WebsiteLog, error) {
	db := database.GetDB()

	var logs []model.WebsiteLog
	err := db.Where("website_id = ?", websiteId).
		Order("created_at DESC, id DESC").
		Find(&logs).
		Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
