// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	DefaultConfigPath   = "~/.jukebox"
	DefaultLibraryFile  = "~/Music/jukebox/music.csv"
	DefaultPlaylistDir  = "~/Music/jukebox/playlists"
	DefaultImagesDir    = "~/Music/jukebox/images"
	DefaultMusicDir     = "~/Music/jukebox/audio"
	DefaultDownloadDir  = "~/Downloads"
	DefaultPlaylistName = "List1"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultBackupPrefix = "jukebox-backups"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	LibraryFile     string `yaml:"library_file"`
	PlaylistDir     string `yaml:"playlist_dir"`
	ImagesDir       string `yaml:"images_dir"`
	MusicDir        string `yaml:"music_dir"` // Локальная директория или базовый URL с mp3
	DownloadDir     string `yaml:"download_dir"`
	DefaultPlaylist string `yaml:"default_playlist"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	AwsBucketName   string `yaml:"aws_bucket_name"`
	AwsAccessKey    string `yaml:"aws_access_key"`
	AwsSecretKey    string `yaml:"aws_secret_key"`
	AwsRegion       string `yaml:"aws_region"`
	AwsEndpoint     string `yaml:"aws_endpoint"`
	BackupPrefix    string `yaml:"backup_prefix"`
}

// envOverrides связывает переменные окружения с полями конфигурации
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"JUKEBOX_LIBRARY_FILE", func(c *Config) *string { return &c.LibraryFile }},
	{"JUKEBOX_PLAYLIST_DIR", func(c *Config) *string { return &c.PlaylistDir }},
	{"JUKEBOX_IMAGES_DIR", func(c *Config) *string { return &c.ImagesDir }},
	{"JUKEBOX_MUSIC_DIR", func(c *Config) *string { return &c.MusicDir }},
	{"JUKEBOX_DOWNLOAD_DIR", func(c *Config) *string { return &c.DownloadDir }},
	{"JUKEBOX_DEFAULT_PLAYLIST", func(c *Config) *string { return &c.DefaultPlaylist }},
	{"JUKEBOX_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
	{"JUKEBOX_LOG_FORMAT", func(c *Config) *string { return &c.LogFormat }},
	{"JUKEBOX_BACKUP_PREFIX", func(c *Config) *string { return &c.BackupPrefix }},
	{"AWS_BUCKET_NAME", func(c *Config) *string { return &c.AwsBucketName }},
	{"AWS_ACCESS_KEY", func(c *Config) *string { return &c.AwsAccessKey }},
	{"AWS_SECRET_KEY", func(c *Config) *string { return &c.AwsSecretKey }},
	{"AWS_REGION", func(c *Config) *string { return &c.AwsRegion }},
	{"AWS_ENDPOINT", func(c *Config) *string { return &c.AwsEndpoint }},
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		LibraryFile:     DefaultLibraryFile,
		PlaylistDir:     DefaultPlaylistDir,
		ImagesDir:       DefaultImagesDir,
		MusicDir:        DefaultMusicDir,
		DownloadDir:     DefaultDownloadDir,
		DefaultPlaylist: DefaultPlaylistName,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		BackupPrefix:    DefaultBackupPrefix,
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не является ошибкой - используются значения по умолчанию.
// Переменные окружения (в том числе из файла .env) имеют приоритет над файлом.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	config := Default()

	data, err := os.ReadFile(ExpandHome(filePath, home))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации yaml: %w", err)
		}
	}

	// Файл .env необязателен
	_ = godotenv.Load()
	for _, o := range envOverrides {
		if value, ok := os.LookupEnv(o.name); ok && value != "" {
			*o.field(config) = value
		}
	}

	config.applyDefaults()

	// Раскрываем тильду в путях
	config.LibraryFile = ExpandHome(config.LibraryFile, home)
	config.PlaylistDir = ExpandHome(config.PlaylistDir, home)
	config.ImagesDir = ExpandHome(config.ImagesDir, home)
	config.MusicDir = ExpandHome(config.MusicDir, home)
	config.DownloadDir = ExpandHome(config.DownloadDir, home)

	return config, nil
}

// applyDefaults заполняет пустые поля, которые могли обнулиться в файле
func (c *Config) applyDefaults() {
	defaults := Default()
	if c.LibraryFile == "" {
		c.LibraryFile = defaults.LibraryFile
	}
	if c.PlaylistDir == "" {
		c.PlaylistDir = defaults.PlaylistDir
	}
	if c.ImagesDir == "" {
		c.ImagesDir = defaults.ImagesDir
	}
	if c.MusicDir == "" {
		c.MusicDir = defaults.MusicDir
	}
	if c.DownloadDir == "" {
		c.DownloadDir = defaults.DownloadDir
	}
	if c.DefaultPlaylist == "" {
		c.DefaultPlaylist = defaults.DefaultPlaylist
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}
	if c.BackupPrefix == "" {
		c.BackupPrefix = defaults.BackupPrefix
	}
}

// HasS3 сообщает, настроено ли хранилище для резервных копий
func (c *Config) HasS3() bool {
	return c.AwsBucketName != ""
}

// ExpandHome заменяет ведущую тильду на домашнюю директорию
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
