package service

import "fmt"

// NextEmployeeCode derives the code for the user created after maxID. The
// number is zero padded to three digits and grows past that when needed.
func NextEmployeeCode(maxID int64) string {
	if maxID < 0 {
		maxID = 0
	}
	return fmt.Sprintf("AW%03d", maxID+1)
}
