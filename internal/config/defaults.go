package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFile       = "~/.config/restore2fa/restore2fa.log"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3

	// Export defaults.
	DefaultExportDir           = "Export"
	DefaultExportFormat        = "bmp"
	DefaultExportSize          = 256
	DefaultExportRecoveryLevel = "medium"
	DefaultExportBorder        = true
	DefaultExportVerify        = true

	// Archive defaults.
	DefaultArchivePackage      = "com.google.android.apps.authenticator2"
	DefaultArchiveStorageEntry = "databases/databases"
	DefaultArchiveMaxEntrySize = 64 << 20
	DefaultArchiveTempDir      = ""

	// Storage defaults.
	DefaultStorageTable       = "preferences"
	DefaultStorageLegacyTable = "accounts"
	DefaultStorageKeyPrefix   = "account"

	// Discovery defaults.
	DefaultDiscoveryArchiveGlob    = "*.tar.gz"
	DefaultDiscoveryDatabaseName   = "databases"
	DefaultDiscoveryDefaultArchive = "com.google.android.apps.authenticator2.tar.gz"
)

// setDefaults registers all default configuration values with a viper instance.
// Every key needs a default so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("log_max_backups", DefaultLogMaxBackups)

	v.SetDefault("export.dir", DefaultExportDir)
	v.SetDefault("export.format", DefaultExportFormat)
	v.SetDefault("export.size", DefaultExportSize)
	v.SetDefault("export.recovery_level", DefaultExportRecoveryLevel)
	v.SetDefault("export.border", DefaultExportBorder)
	v.SetDefault("export.verify", DefaultExportVerify)

	v.SetDefault("archive.package", DefaultArchivePackage)
	v.SetDefault("archive.storage_entry", DefaultArchiveStorageEntry)
	v.SetDefault("archive.max_entry_size", DefaultArchiveMaxEntrySize)
	v.SetDefault("archive.temp_dir", DefaultArchiveTempDir)

	v.SetDefault("storage.table", DefaultStorageTable)
	v.SetDefault("storage.legacy_table", DefaultStorageLegacyTable)
	v.SetDefault("storage.key_prefix", DefaultStorageKeyPrefix)

	v.SetDefault("discovery.archive_glob", DefaultDiscoveryArchiveGlob)
	v.SetDefault("discovery.database_name", DefaultDiscoveryDatabaseName)
	v.SetDefault("discovery.default_archive", DefaultDiscoveryDefaultArchive)
}
