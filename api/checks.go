// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"fmt"
	"os"
)

func (v *StatusResponse) Check() error {
	if v.PID <= 0 {
		return fmt.Errorf("status response has invalid pid %d: %w", v.PID, os.ErrInvalid)
	}
	if len(v.State) == 0 {
		return fmt.Errorf("status response has empty state: %w", os.ErrInvalid)
	}
	return nil
}
