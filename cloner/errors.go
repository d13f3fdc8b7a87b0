package cloner

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrAuthenticationRejected is returned when the secondary credential is invalid or expired
	ErrAuthenticationRejected = errors.New("authentication rejected")
	// ErrSourceNotFound is returned when the source server is not accessible with the secondary credential
	ErrSourceNotFound = errors.New("source server not found")
	// ErrMalformedResponse is returned when a remote read returns an unexpected payload
	ErrMalformedResponse = errors.New("malformed response")
	// ErrPermissionDenied is returned when the acting identity lacks rights for a write
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTransientWrite is returned for any other failed write
	ErrTransientWrite = errors.New("write failed")
	// ErrInvalidIdentifier is returned when an identifier is not a snowflake
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrDestinationNotFound is returned when the bot cannot see the destination server
	ErrDestinationNotFound = errors.New("destination server not found")
	// ErrNotAdministrator is returned when the bot is not an administrator of the destination server
	ErrNotAdministrator = errors.New("administrator permission required on destination server")
)

const (
	discordCodeMissingAccess      = 50001
	discordCodeMissingPermissions = 50013
)

func restStatus(err error) (int, int) {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return 0, 0
	}

	var status, code int

	if rest.Response != nil {
		status = rest.Response.StatusCode
	}

	if rest.Message != nil {
		code = rest.Message.Code
	}

	return status, code
}

func classifyRead(what string, err error) error {
	if errors.Is(err, discordgo.ErrUnauthorized) {
		return fmt.Errorf("fetching %s: %w", what, ErrAuthenticationRejected)
	}

	if errors.Is(err, discordgo.ErrJSONUnmarshal) {
		return fmt.Errorf("fetching %s: %w: %v", what, ErrMalformedResponse, err)
	}

	status, _ := restStatus(err)

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("fetching %s: %w", what, ErrAuthenticationRejected)
	case http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("fetching %s: %w", what, ErrSourceNotFound)
	}

	return fmt.Errorf("fetching %s: %w", what, err)
}

// ClassifyWrite wraps error of a destination write into ErrPermissionDenied or ErrTransientWrite
func ClassifyWrite(err error) error {
	status, code := restStatus(err)

	if status == http.StatusForbidden || code == discordCodeMissingAccess || code == discordCodeMissingPermissions {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	return fmt.Errorf("%w: %v", ErrTransientWrite, err)
}
