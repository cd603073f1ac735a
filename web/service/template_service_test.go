package service

import (
	"strings"
	"testing"

	"webforge/database"
	"webforge/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadTemplate(t *testing.T) {
	env := setupEnv(t)

	tpl, err := env.templates.Upload("basic", "Basic", "a starter", "1.0", "basic.zip", strings.NewReader("zip bytes"))
	require.NoError(t, err)
	assert.True(t, env.store.Exists("basic.zip"))
	assert.True(t, tpl.Enable)

	// Duplicate name is a conflict.
	_, err = env.templates.Upload("basic", "", "", "", "basic2.zip", strings.NewReader("zip"))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestUploadTemplateValidation(t *testing.T) {
	env := setupEnv(t)

	_, err := env.templates.Upload("", "", "", "", "basic.zip", strings.NewReader("zip"))
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = env.templates.Upload("tar", "", "", "", "site.tar.gz", strings.NewReader("tar"))
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestUploadRemovesArchiveWhenInsertFails(t *testing.T) {
	env := setupEnv(t)

	// Break the insert while leaving the name pre-check working.
	require.NoError(t, database.GetDB().Migrator().DropColumn(&model.Template{}, "display_name"))

	_, err := env.templates.Upload("basic", "Basic", "", "", "basic.zip", strings.NewReader("zip"))
	require.Error(t, err)
	assert.False(t, env.store.Exists("basic.zip"), "a failed insert must not orphan the archive")
}

func TestGetTemplatesFlagsMissingFiles(t *testing.T) {
	env := setupEnv(t)

	_, err := env.templates.Upload("basic", "", "", "", "basic.zip", strings.NewReader("zip"))
	require.NoError(t, err)
	_, err = env.templates.Upload("gone", "", "", "", "gone.zip", strings.NewReader("zip"))
	require.NoError(t, err)
	require.NoError(t, env.store.Delete("gone.zip"))

	views, err := env.templates.GetTemplates()
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]bool{}
	for _, v := range views {
		byName[v.Name] = v.FileExists
	}
	assert.True(t, byName["basic"])
	assert.False(t, byName["gone"])
}

func TestDeleteTemplateRemovesRowAndFile(t *testing.T) {
	env := setupEnv(t)

	tpl, err := env.templates.Upload("basic", "", "", "", "basic.zip", strings.NewReader("zip"))
	require.NoError(t, err)

	require.NoError(t, env.templates.Delete(tpl.Id))
	assert.False(t, env.store.Exists("basic.zip"))

	err = env.templates.Delete(tpl.Id)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReconcileFilesDisablesOrphans(t *testing.T) {
	env := setupEnv(t)

	_, err := env.templates.Upload("basic", "", "", "", "basic.zip", strings.NewReader("zip"))
	require.NoError(t, err)
	require.NoError(t, env.store.Delete("basic.zip"))

	require.NoError(t, env.templates.ReconcileFiles())

	views, err := env.templates.GetTemplates()
	require.NoError(t, err)
	assert.Empty(t, views, "disabled templates drop out of the catalog")
}
