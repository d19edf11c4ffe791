package replayer

import (
	"errors"
	"sync"

	"github.com/fortiblox/x1-entrypoint/pkg/entrypoint"
	"github.com/fortiblox/x1-entrypoint/pkg/program/sanity"
	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

// ErrProgramNotFound indicates the program is not registered.
var ErrProgramNotFound = errors.New("program not found")

// Program is a program entrypoint: it receives the serialized input region
// and returns 0 on success.
type Program func(input []byte, rt entrypoint.Runtime) uint64

// ProgramRegistry maps program IDs to entrypoints.
type ProgramRegistry struct {
	mu       sync.RWMutex
	programs map[types.Pubkey]Program
	names    map[types.Pubkey]string
}

// NewProgramRegistry creates an empty program registry.
func NewProgramRegistry() *ProgramRegistry {
	return &ProgramRegistry{
		programs: make(map[types.Pubkey]Program),
		names:    make(map[types.Pubkey]string),
	}
}

// RegisterProgram registers an entrypoint under id.
func (r *ProgramRegistry) RegisterProgram(id types.Pubkey, name string, program Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[id] = program
	r.names[id] = name
}

// GetProgram returns the entrypoint registered under id.
func (r *ProgramRegistry) GetProgram(id types.Pubkey) (Program, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	return p, ok
}

// GetProgramName returns the name registered with id.
func (r *ProgramRegistry) GetProgramName(id types.Pubkey) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[id]; ok {
		return name
	}
	return id.String()
}

// RegisterSanity registers the sanity program under id.
func (r *ProgramRegistry) RegisterSanity(id types.Pubkey) {
	r.RegisterProgram(id, sanity.Name, sanity.Entrypoint)
}
