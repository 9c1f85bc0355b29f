package downloader

import "github.com/nyxaria/kmfetch/pkg/models"

// effectiveConfig resolves get_config_value(artist, cfg, key): an
// artist-level override wins over the global value, field by field.
type effectiveConfig struct {
	artistFolderTemplate string
	postFolderTemplate   string
	fileNameTemplate     string
	dateFormat           string
	saveContent          bool
	saveEmptyPosts       bool
	renameImagesOnly     bool
}

func resolveConfig(cfg models.Config, ac models.ArtistConfig) effectiveConfig {
	e := effectiveConfig{
		artistFolderTemplate: cfg.ArtistFolderTemplate,
		postFolderTemplate:   cfg.PostFolderTemplate,
		fileNameTemplate:     cfg.FileNameTemplate,
		dateFormat:           cfg.DateFormat,
		saveContent:          cfg.SaveContent,
		saveEmptyPosts:       cfg.SaveEmptyPosts,
		renameImagesOnly:     cfg.RenameImagesOnly,
	}
	if ac.ArtistFolderTemplate != "" {
		e.artistFolderTemplate = ac.ArtistFolderTemplate
	}
	if ac.PostFolderTemplate != "" {
		e.postFolderTemplate = ac.PostFolderTemplate
	}
	if ac.FileNameTemplate != "" {
		e.fileNameTemplate = ac.FileNameTemplate
	}
	if ac.DateFormat != "" {
		e.dateFormat = ac.DateFormat
	}
	if ac.SaveContent != nil {
		e.saveContent = *ac.SaveContent
	}
	if ac.SaveEmptyPosts != nil {
		e.saveEmptyPosts = *ac.SaveEmptyPosts
	}
	if ac.RenameImagesOnly != nil {
		e.renameImagesOnly = *ac.RenameImagesOnly
	}
	return e
}
