package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// FileName is the config file discovered in the root directory.
const FileName = ".stitch.yaml"

// FileConfig carries optional defaults read from a config file. Pointer
// fields distinguish "unset" from an explicit zero value; CLI flags always
// win over file values.
type FileConfig struct {
	Format         *string  `mapstructure:"format"`
	Preset         *string  `mapstructure:"preset"`
	MaxFileSize    *string  `mapstructure:"max_file_size"`
	Encoding       *string  `mapstructure:"encoding"`
	Ignore         []string `mapstructure:"ignore"`
	IncludeHidden  *bool    `mapstructure:"include_hidden"`
	FollowSymlinks *bool    `mapstructure:"follow_symlinks"`
	UseGitignore   *bool    `mapstructure:"gitignore"`
	Tokens         *bool    `mapstructure:"tokens"`
	Copy           *bool    `mapstructure:"copy"`
}

// LoadFile reads the config file. explicitPath takes precedence over the
// discovered root file; a missing discovered file is not an error, a missing
// explicit one is.
func LoadFile(rootDir, explicitPath string) (FileConfig, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(rootDir, FileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return FileConfig{}, nil
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return FileConfig{}, &ConfigurationError{Msg: fmt.Sprintf("reading config file %q", path), Err: err}
	}

	var fileConfig FileConfig
	if err := v.Unmarshal(&fileConfig); err != nil {
		return FileConfig{}, &ConfigurationError{Msg: fmt.Sprintf("parsing config file %q", path), Err: err}
	}
	return fileConfig, nil
}

// Apply folds file values into the config. set reports whether the
// corresponding CLI flag was given explicitly; flags win over file values.
func (f FileConfig) Apply(c *Config, set func(flag string) bool) error {
	if f.Format != nil && !set("format") {
		c.Format = *f.Format
	}
	if f.Preset != nil && !set("preset") {
		c.Preset = *f.Preset
	}
	if f.Encoding != nil && !set("encoding") {
		c.Encoding = *f.Encoding
	}
	if f.MaxFileSize != nil && !set("max-file-size") {
		size, err := ParseSize(*f.MaxFileSize)
		if err != nil {
			return err
		}
		c.MaxFileSize = size
	}
	if len(f.Ignore) > 0 {
		// File patterns sit below CLI patterns; prepend so later CLI rules
		// keep the last word.
		c.ExtraIgnores = append(append([]string{}, f.Ignore...), c.ExtraIgnores...)
	}
	if f.IncludeHidden != nil && !set("include-hidden") {
		c.IncludeHidden = *f.IncludeHidden
	}
	if f.FollowSymlinks != nil && !set("follow-symlinks") {
		c.FollowSymlinks = *f.FollowSymlinks
	}
	if f.UseGitignore != nil && !set("no-gitignore") {
		c.UseGitignore = *f.UseGitignore
	}
	if f.Tokens != nil && !set("tokens") {
		c.CountTokens = *f.Tokens
	}
	if f.Copy != nil && !set("copy") {
		c.CopyToClip = *f.Copy
	}
	return nil
}
