package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/plaid"
)

// LoadPlaidConfig reads the plaid section for ownerID.
func LoadPlaidConfig(v *viper.Viper, ownerID int64) (*plaid.Config, error) {
	cfg := &plaid.Config{
		ClientID:    v.GetString("plaid.client_id"),
		Secret:      v.GetString("plaid.secret"),
		Environment: v.GetString("plaid.environment"),
		AccessToken: v.GetString("plaid.access_token"),
		OwnerID:     ownerID,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatalakeConfig locates the Mongo collection to import from.
type DatalakeConfig struct {
	URI        string
	Database   string
	Collection string
	// DataSource restricts the import to one loader source, empty for all.
	DataSource string
}

// LoadDatalakeConfig reads the datalake section.
func LoadDatalakeConfig(v *viper.Viper) (*DatalakeConfig, error) {
	cfg := &DatalakeConfig{
		URI:        v.GetString("datalake.uri"),
		Database:   v.GetString("datalake.database"),
		Collection: v.GetString("datalake.collection"),
		DataSource: v.GetString("datalake.data_source"),
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("%w: datalake.uri", common.ErrMissingConfig)
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: datalake.database and datalake.collection are required", common.ErrInvalidConfig)
	}
	return cfg, nil
}

// SimpleFINConfig holds the bridge credentials. Token is only needed until
// an access URL has been claimed and saved to StateFile.
type SimpleFINConfig struct {
	Token     string
	AccessURL string
	StateFile string
}

// LoadSimpleFINConfig reads the simplefin section.
func LoadSimpleFINConfig(v *viper.Viper) (*SimpleFINConfig, error) {
	cfg := &SimpleFINConfig{
		Token:     v.GetString("simplefin.token"),
		AccessURL: v.GetString("simplefin.access_url"),
		StateFile: ExpandPath(v.GetString("simplefin.state_file")),
	}
	if cfg.AccessURL == "" && cfg.StateFile == "" {
		return nil, fmt.Errorf("%w: simplefin.state_file", common.ErrMissingConfig)
	}
	return cfg, nil
}
