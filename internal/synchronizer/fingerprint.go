package synchronizer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// Fingerprint digests the canonical JSON form of a machine list. MachineState
// carries no timestamps, so equal observable state gives equal fingerprints.
func Fingerprint(machines []models.MachineState) (string, error) {
	if machines == nil {
		machines = []models.MachineState{}
	}
	raw, err := json.Marshal(machines)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
