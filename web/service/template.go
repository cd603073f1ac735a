package service

import (
	"io"
	"strings"

	"webforge/database"
	"webforge/database/model"
	"webforge/logger"
	"webforge/storage"
)

// TemplateView is a Template row annotated with whether its backing archive
// is actually present on disk.
type TemplateView struct {
	model.Template
	FileExists bool `json:"fileExists"`
}

// TemplateService manages the template catalog: database rows plus the
// archive files in the template store.
type TemplateService struct {
	store *storage.TemplateStore
}

func NewTemplateService(store *storage.TemplateStore) *TemplateService {
	return &TemplateService{store: store}
}

// GetTemplates lists active templates cross-referenced against the files
// actually present in the store.
func (s *TemplateService) GetTemplates() ([]TemplateView, error) {
	db := database.GetDB()

	var templates []model.Template
	if err := db.Where("enable = ?", true).Order("name").Find(&templates).Error; err != nil {
		return nil, err
	}

	available, err := s.store.ListAvailable()
	if err != nil {
		return nil, err
	}
	onDisk := make(map[string]bool, len(available))
	for _, name := range available {
		onDisk[name] = true
	}

	views := make([]TemplateView, len(templates))
	for i, tpl := range templates {
		views[i] = TemplateView{Template: tpl, FileExists: onDisk[tpl.FileName]}
	}
	return views, nil
}

// Upload stores the archive bytes and creates the catalog row. The backing
// file is overwritten if an archive of the same file name already exists.
func (s *TemplateService) Upload(name, displayName, description, version, fileName string, r io.Reader) (*model.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errOf(KindInvalidInput, "template name can not be empty")
	}
	if !strings.EqualFold(ext(fileName), storage.ArchiveExt) {
		return nil, errOf(KindInvalidInput, "only %s archives are accepted", storage.ArchiveExt)
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(&model.Template{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errOf(KindConflict, "template %q already exists", name)
	}

	if err := s.store.Save(fileName, r); err != nil {
		return nil, err
	}

	tpl := &model.Template{
		Name:        name,
		DisplayName: displayName,
		Description: description,
		Version:     version,
		FileName:    fileName,
		Enable:      true,
	}
	if err := db.Create(tpl).Error; err != nil {
		// No catalog row, so nothing would ever reconcile the file away.
		if derr := s.store.Delete(fileName); derr != nil {
			logger.Warningf("failed to remove orphaned archive %s: %v", fileName, derr)
		}
		return nil, err
	}
	return tpl, nil
}

// Delete removes both the catalog row and the backing archive.
func (s *TemplateService) Delete(id int) error {
	db := database.GetDB()

	tpl := &model.Template{}
	err := db.First(tpl, id).Error
	if database.IsNotFound(err) {
		return errOf(KindNotFound, "template %d not found", id)
	} else if err != nil {
		return err
	}

	if err := s.store.Delete(tpl.FileName); err != nil {
		logger.Warningf("failed to delete template archive %s: %v", tpl.FileName, err)
	}
	return db.Delete(tpl).Error
}

// ReconcileFiles disables catalog rows whose backing archive has vanished
// from the store. Run periodically; uploads and deletes can happen outside
// the database transaction.
func (s *TemplateService) ReconcileFiles() error {
	db := database.GetDB()

	var templates []model.Template
	if err := db.Where("enable = ?", true).Find(&templates).Error; err != nil {
		return err
	}

	for _, tpl := range templates {
		if s.store.Exists(tpl.FileName) {
			continue
		}
		logger.Warningf("template %q backing file %s is missing, disabling", tpl.Name, tpl.FileName)
		if err := db.Model(&model.Template{}).
			Where("id = ?", tpl.Id).
			Update("enable", false).
			Error; err != nil {
			return err
		}
	}
	return nil
}

func ext(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		return fileName[i:]
	}
	return ""
}
