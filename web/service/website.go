package service

import (
	"regexp"
	"sync"

	"webforge/database"
	"webforge/database/model"
	"webforge/logger"
	"webforge/storage"
)

// subdomainRegexp accepts lowercase letters, digits and hyphens only.
var subdomainRegexp = regexp.MustCompile(`^[a-z0-9-]+$`)

// WebsitePatch carries the fields a partial update may change. Ownership and
// subdomain are not here: they are stripped server-side by construction.
type WebsitePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Enable      *bool   `json:"enable"`
}

// WebsiteService orchestrates the website lifecycle: directory subtree,
// database row and audit trail move together through create, template
// application and deletion.
type WebsiteService struct {
	sites *storage.SiteManager
	store *storage.TemplateStore
	audit AuditService

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewWebsiteService(sites *storage.SiteManager, store *storage.TemplateStore) *WebsiteService {
	return &WebsiteService{
		sites: sites,
		store: store,
		locks: make(map[int]*sync.Mutex),
	}
}

// lockWebsite serializes mutating operations per website id so concurrent
// template applications cannot interleave their clear and extract steps.
func (s *WebsiteService) lockWebsite(id int) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// GetWebsites returns the caller's websites (zero or one).
func (s *WebsiteService) GetWebsites(userId int) ([]model.Website, error) {
	db := database.GetDB()

	var websites []model.Website
	if err := db.Where("user_id = ?", userId).Find(&websites).Error; err != nil {
		return nil, err
	}
	return websites, nil
}

// GetWebsite fetches one website, enforcing ownership.
func (s *WebsiteService) GetWebsite(userId, websiteId int) (*model.Website, error) {
	db := database.GetDB()

	website := &model.Website{}
	err := db.First(website, websiteId).Error
	if database.IsNotFound(err) {
		return nil, errOf(KindNotFound, "website %d not found", websiteId)
	} else if err != nil {
		return nil, err
	}
	if website.UserId != userId {
		return nil, errOf(KindForbidden, "website %d does not belong to you", websiteId)
	}
	return website, nil
}

// CreateWebsite provisions a new website: quota and subdomain checks, then
// subtree creation, then the database row, then the audit entry. If subtree
// creation fails nothing has been committed yet.
func (s *WebsiteService) CreateWebsite(userId int, name, subdomain, description string) (*model.Website, error) {
	db := database.GetDB()

	var count int64
	if err := db.Model(&model.Website{}).Where("user_id = ?", userId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errOf(KindQuotaExceeded, "account already has a website")
	}

	if subdomain == "" || !subdomainRegexp.MatchString(subdomain) {
		return nil, errOf(KindInvalidInput, "subdomain may only contain lowercase letters, digits and hyphens")
	}
	if name == "" {
		return nil, errOf(KindInvalidInput, "name can not be empty")
	}

	if err := db.Model(&model.Website{}).Where("subdomain = ?", subdomain).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errOf(KindConflict, "subdomain %q is already taken", subdomain)
	}

	path, err := s.sites.Create(userId, subdomain)
	if err != nil {
		return nil, err
	}

	website := &model.Website{
		UserId:      userId,
		Name:        name,
		Subdomain:   subdomain,
		Description: description,
		Enable:      true,
	}
	if err := db.Create(website).Error; err != nil {
		// The row was never committed; drop the fresh subtree again.
		s.sites.Delete(userId, subdomain)
		return nil, err
	}

	logger.Infof("provisioned website %q for user %d at %s", subdomain, userId, path)
	s.audit.Log(website.Id, "created", map[string]any{
		"name":      name,
		"subdomain": subdomain,
	})
	return website, nil
}

// UpdateWebsite applies a partial update. Subdomain and ownership are
// immutable; the patch cannot carry them.
func (s *WebsiteService) UpdateWebsite(userId, websiteId int, patch WebsitePatch) (*model.Website, error) {
	unlock := s.lockWebsite(websiteId)
	defer unlock()

	website, err := s.GetWebsite(userId, websiteId)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	changed := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
		changed["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
		changed["description"] = *patch.Description
	}
	if patch.Enable != nil {
		updates["enable"] = *patch.Enable
		changed["enable"] = *patch.Enable
	}
	if len(updates) == 0 {
		return website, nil
	}

	db := database.GetDB()
	if err := db.Model(website).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.audit.Log(website.Id, "updated", changed)
	return s.GetWebsite(userId, websiteId)
}

// ApplyTemplate deploys the named archive into the website's subtree. The
// archive is extracted into a staging directory and atomically swapped into
// place; on extraction failure the live subtree is untouched. Only after a
// successful swap is CurrentScript committed.
func (s *WebsiteService) ApplyTemplate(userId, websiteId int, fileName string) (*model.Website, error) {
	unlock := s.lockWebsite(websiteId)
	defer unlock()

	website, err := s.GetWebsite(userId, websiteId)
	if err != nil {
		return nil, err
	}
	if !s.store.Exists(fileName) {
		return nil, errOf(KindNotFound, "template file %q not found", fileName)
	}

	staged, err := s.sites.Stage(website.UserId, website.Subdomain)
	if err != nil {
		return nil, err
	}
	if err := storage.ExtractArchive(s.store.FilePath(fileName), staged); err != nil {
		s.sites.DiscardStage(staged)
		return nil, err
	}
	if err := s.sites.Swap(website.UserId, website.Subdomain, staged); err != nil {
		s.sites.DiscardStage(staged)
		return nil, err
	}

	oldScript := website.CurrentScript
	db := database.GetDB()
	if err := db.Model(website).Update("current_script", fileName).Error; err != nil {
		return nil, err
	}
	website.CurrentScript = fileName

	logger.Infof("applied template %s to website %q", fileName, website.Subdomain)
	s.audit.Log(website.Id, "script_changed", map[string]any{
		"oldScript": oldScript,
		"newScript": fileName,
	})
	return website, nil
}

// DeleteWebsite tears down the subtree (best effort) and removes the row.
// Audit entries cascade with the row.
func (s *WebsiteService) DeleteWebsite(userId, websiteId int) error {
	unlock := s.lockWebsite(websiteId)
	defer unlock()

	website, err := s.GetWebsite(userId, websiteId)
	if err != nil {
		return err
	}

	result := s.sites.Delete(website.UserId, website.Subdomain)
	switch result.State {
	case storage.CleanupPartial:
		logger.Warningf("partial cleanup of website %q subtree: %v", website.Subdomain, result.Err)
	case storage.CleanupNotFound:
		logger.Infof("website %q subtree already absent", website.Subdomain)
	}

	db := database.GetDB()
	if err := db.Delete(website).Error; err != nil {
		return err
	}
	// Cascade is enforced by the FK; repeat in gorm terms for DBs without it.
	return db.Where("website_id = ?", websiteId).Delete(&model.WebsiteLog{}).Error
}

// ListFiles returns the website's subtree as a nested mapping for display.
func (s *WebsiteService) ListFiles(userId, websiteId int) (map[string]any, error) {
	website, err := s.GetWebsite(userId, websiteId)
	if err != nil {
		return nil, err
	}
	if !s.sites.Exists(website.UserId, website.Subdomain) {
		return map[string]any{}, nil
	}
	return s.sites.ListTree(website.UserId, website.Subdomain)
}

// GetLogs returns the website's audit entries, newest first, owner-scoped.
func (s *WebsiteService) GetLogs(userId, websiteId int) ([]model.WebsiteLog, error) {
	if _, err := s.GetWebsite(userId, websiteId); err != nil {
		return nil, err
	}
	return s.audit.GetLogs(websiteId)
}

// SitePath exposes the deterministic subtree path for a website.
func (s *WebsiteService) SitePath(website *model.Website) string {
	return s.sites.SitePath(website.UserId, website.Subdomain)
}
