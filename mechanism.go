/*
Copyright © 2024 the TREX authors.
This file is part of TREX.

TREX is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TREX is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TREX.  If not, see <http://www.gnu.org/licenses/>.
*/

package trex

// UserDefinedReaction is a pluggable process-9 kernel (spec.md §4.E,
// "user-defined reaction"): a chemical flagged ProcessFlags.UserDefined
// delegates its rate law to an implementation registered here instead of
// the built-in first-order kernel, the way a chemical mechanism plugs
// custom chemistry into a larger transport model.
type UserDefinedReaction interface {
	// Flux returns the mass outflux (g/s) of chem under ctx. Implementations
	// read ctx.Fractions, ctx.CChem, and ctx.Volume the same way the
	// built-in kernels in reaction.go do.
	Flux(chem *Chemical, ctx ReactionContext) float64

	// Name identifies the reaction for diagnostic logging.
	Name() string
}

// UserDefinedRegistry resolves a chemical's user-defined reaction by name.
// The simulation looks the name up each time it evaluates that chemical's
// reaction fluxes; nothing is cached.
type UserDefinedRegistry struct {
	reactions map[string]UserDefinedReaction
}

// NewUserDefinedRegistry constructs an empty registry.
func NewUserDefinedRegistry() *UserDefinedRegistry {
	return &UserDefinedRegistry{reactions: map[string]UserDefinedReaction{}}
}

// Register adds a reaction under its own Name(), overwriting any existing
// registration with that name.
func (r *UserDefinedRegistry) Register(rxn UserDefinedReaction) {
	r.reactions[rxn.Name()] = rxn
}

// Lookup returns the reaction registered under name, if any.
func (r *UserDefinedRegistry) Lookup(name string) (UserDefinedReaction, bool) {
	rxn, ok := r.reactions[name]
	return rxn, ok
}
