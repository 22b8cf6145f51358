package config

import "time"

// Config is the root configuration object populated by Load via viper.
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Registry    RegistryConfig  `mapstructure:"registry"`
	Session     SessionConfig   `mapstructure:"session"`
	CloudAgent  CloudAgentConfig `mapstructure:"cloud_agent"`
	Companies   []CompanyConfig `mapstructure:"companies"`
	Policies    []PolicyConfig  `mapstructure:"policies"`
	Ephemeral   EphemeralConfig `mapstructure:"ephemeral"`
	Janitor     JanitorConfig   `mapstructure:"janitor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig controls the slog handler (internal/infra/logging).
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// StorageConfig configures the blob store adapter (C2) and its
// envelope-encryption master key.
type StorageConfig struct {
	Provider           string        `mapstructure:"provider"` // "s3"
	Bucket             string        `mapstructure:"bucket"`
	Region             string        `mapstructure:"region"`
	Endpoint           string        `mapstructure:"endpoint"`
	EnvelopeMasterKeyHex string      `mapstructure:"envelope_master_key_hex"` // 32 bytes, hex-encoded
	PresignTTL         time.Duration `mapstructure:"presign_ttl"`
}

// RegistryConfig configures the signed JSON-at-rest document registry (C3).
type RegistryConfig struct {
	FilePath      string `mapstructure:"file_path"`
	SignatureKeyHex string `mapstructure:"signature_key_hex"` // HMAC-SHA256 key, hex-encoded
}

// SessionConfig configures login session handling (C10).
type SessionConfig struct {
	MappingsFilePath           string   `mapstructure:"mappings_file_path"`
	SoftDeletedConnectionsPath string   `mapstructure:"soft_deleted_connections_path"`
	AcceptedIssuerDIDs         []string `mapstructure:"accepted_issuer_dids"`
}

// CloudAgentTenant configures one role's Cloud Agent credentials (spec.md
// §4.1: tenant and enterprise are the same interface, different base URL +
// token).
type CloudAgentTenant struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	WalletID  string        `mapstructure:"wallet_id"`
}

// CloudAgentConfig configures both Cloud Agent roles plus the
// department-scoped enterprise secrets used by onboarding (C12).
type CloudAgentConfig struct {
	Tenant              CloudAgentTenant            `mapstructure:"tenant"`
	Enterprise          CloudAgentTenant            `mapstructure:"enterprise"`
	DepartmentAPIKeys   map[string]string           `mapstructure:"department_api_keys"` // HR, IT, Security
	DIDPublicationPoll  time.Duration               `mapstructure:"did_publication_poll"`
	DIDPublicationBudget time.Duration              `mapstructure:"did_publication_budget"` // spec.md §4.12: 60s
}

// CompanyConfig is one row of the company catalogue (company identifier ->
// DID and section-encryption secret), spec.md §6 Configuration.
type CompanyConfig struct {
	CompanyID               string `mapstructure:"company_id"`
	DisplayName              string `mapstructure:"display_name"`
	SectionEncryptionSecretHex string `mapstructure:"section_encryption_secret_hex"` // 32 bytes, hex-encoded
}

// PolicyConfig is one row of the resource policy table (spec.md §6).
type PolicyConfig struct {
	ResourceID        string `mapstructure:"resource_id"`
	RequiredClearance string `mapstructure:"required_clearance"`
	RequiredRole      string `mapstructure:"required_role"`
}

// EphemeralConfig configures the ephemeral pickup surface (C8).
type EphemeralConfig struct {
	PickupBaseURL string        `mapstructure:"pickup_base_url"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
}

// JanitorConfig configures the periodic sweep (C13).
type JanitorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}
