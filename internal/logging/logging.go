package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Debug switches to the human-readable
// development encoder.
func New(debug bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
