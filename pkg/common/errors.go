package common

import "fmt"

type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("Usage Error: %s", e.Message)
}

type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Configuration Error: %s", e.Message)
}

type PublishError struct {
	Message string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("Publish Error: %s", e.Message)
}

func NewUsageError(message string) error {
	return &UsageError{Message: message}
}

func NewConfigError(message string) error {
	return &ConfigError{Message: message}
}

func NewPublishError(message string) error {
	return &PublishError{Message: message}
}
