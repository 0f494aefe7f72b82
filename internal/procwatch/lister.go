package procwatch

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// SystemLister lists processes through gopsutil.
type SystemLister struct{}

// ProcessNames returns the executable names of all processes visible to the
// current user. Processes that exit or deny access mid-scan are skipped.
func (SystemLister) ProcessNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
