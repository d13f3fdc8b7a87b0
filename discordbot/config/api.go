// Package config with configuration models and utilities
package config

import (
	"errors"
	"io"
	"os"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

// TokenEnv is environment variable overriding configured bot token
const TokenEnv = "DISCORD_TOKEN"

// ErrMissingToken is returned when neither configuration nor environment provide bot token
var ErrMissingToken = errors.New("missing bot token")

// Read reads configuration
func Read(reader io.Reader) (root *Root, err error) {
	root = &Root{}

	err = yaml.NewDecoder(reader).Decode(root)
	if errors.Is(err, io.EOF) {
		err = nil
	}

	return
}

// Write writes configuration
func Write(writer io.Writer, root *Root) (err error) {
	err = yaml.NewEncoder(writer).Encode(root)

	return
}

// Load reads configuration file at path, applies .env files, environment overrides and defaults.
// Missing configuration file is treated as empty one.
func Load(path string, envFiles ...string) (*Root, error) {
	root := &Root{}

	f, err := os.Open(path)

	switch {
	case err == nil:
		root, err = Read(f)

		cerr := f.Close()
		if err == nil {
			err = cerr
		}

		if err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	err = godotenv.Load(envFiles...)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if token := os.Getenv(TokenEnv); token != "" {
		root.Private.Token = token
	}

	root.Defaults()

	if root.Private.Token == "" {
		return nil, ErrMissingToken
	}

	return root, nil
}
