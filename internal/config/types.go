package config

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel      string          `yaml:"log_level" toml:"log_level" mapstructure:"log_level"`
	LogFile       string          `yaml:"log_file" toml:"log_file" mapstructure:"log_file"`
	LogMaxSizeMB  int             `yaml:"log_max_size_mb" toml:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int             `yaml:"log_max_backups" toml:"log_max_backups" mapstructure:"log_max_backups"`
	Export        ExportConfig    `yaml:"export" toml:"export" mapstructure:"export"`
	Archive       ArchiveConfig   `yaml:"archive" toml:"archive" mapstructure:"archive"`
	Storage       StorageConfig   `yaml:"storage" toml:"storage" mapstructure:"storage"`
	Discovery     DiscoveryConfig `yaml:"discovery" toml:"discovery" mapstructure:"discovery"`
}

// ExportConfig controls QR rendering and the export directory.
type ExportConfig struct {
	Dir           string `yaml:"dir" toml:"dir" mapstructure:"dir"`
	Format        string `yaml:"format" toml:"format" mapstructure:"format"`
	Size          int    `yaml:"size" toml:"size" mapstructure:"size"`
	RecoveryLevel string `yaml:"recovery_level" toml:"recovery_level" mapstructure:"recovery_level"`
	Border        bool   `yaml:"border" toml:"border" mapstructure:"border"`
	Verify        bool   `yaml:"verify" toml:"verify" mapstructure:"verify"`
}

// ArchiveConfig locates the database inside a backup archive.
type ArchiveConfig struct {
	Package      string `yaml:"package" toml:"package" mapstructure:"package"`
	StorageEntry string `yaml:"storage_entry" toml:"storage_entry" mapstructure:"storage_entry"`
	MaxEntrySize int64  `yaml:"max_entry_size" toml:"max_entry_size" mapstructure:"max_entry_size"`
	TempDir      string `yaml:"temp_dir" toml:"temp_dir" mapstructure:"temp_dir"`
}

// StorageConfig names the tables and key prefix read from the database.
type StorageConfig struct {
	Table       string `yaml:"table" toml:"table" mapstructure:"table"`
	LegacyTable string `yaml:"legacy_table" toml:"legacy_table" mapstructure:"legacy_table"`
	KeyPrefix   string `yaml:"key_prefix" toml:"key_prefix" mapstructure:"key_prefix"`
}

// DiscoveryConfig controls which files are picked up from the working
// directory when no path is given.
type DiscoveryConfig struct {
	ArchiveGlob    string `yaml:"archive_glob" toml:"archive_glob" mapstructure:"archive_glob"`
	DatabaseName   string `yaml:"database_name" toml:"database_name" mapstructure:"database_name"`
	DefaultArchive string `yaml:"default_archive" toml:"default_archive" mapstructure:"default_archive"`
}

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel:      DefaultLogLevel,
		LogFile:       DefaultLogFile,
		LogMaxSizeMB:  DefaultLogMaxSizeMB,
		LogMaxBackups: DefaultLogMaxBackups,
		Export: ExportConfig{
			Dir:           DefaultExportDir,
			Format:        DefaultExportFormat,
			Size:          DefaultExportSize,
			RecoveryLevel: DefaultExportRecoveryLevel,
			Border:        DefaultExportBorder,
			Verify:        DefaultExportVerify,
		},
		Archive: ArchiveConfig{
			Package:      DefaultArchivePackage,
			StorageEntry: DefaultArchiveStorageEntry,
			MaxEntrySize: DefaultArchiveMaxEntrySize,
			TempDir:      DefaultArchiveTempDir,
		},
		Storage: StorageConfig{
			Table:       DefaultStorageTable,
			LegacyTable: DefaultStorageLegacyTable,
			KeyPrefix:   DefaultStorageKeyPrefix,
		},
		Discovery: DiscoveryConfig{
			ArchiveGlob:    DefaultDiscoveryArchiveGlob,
			DatabaseName:   DefaultDiscoveryDatabaseName,
			DefaultArchive: DefaultDiscoveryDefaultArchive,
		},
	}
}
