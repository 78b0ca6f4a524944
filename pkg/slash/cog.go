package slash

import "sort"

// Cog groups related commands so they can be added and torn down together.
// Handlers are usually method values of the cog, which binds the receiver.
type Cog interface {
	Name() string
	Commands() []*Command
}

// AddCog registers every command of cog. Nothing is registered when the cog
// name or any command name is already taken.
func (r *Registry) AddCog(cog Cog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := cog.Name()
	if _, dup := r.cogs[name]; dup {
		return configErr("%q is already a registered cog", name)
	}

	var added []*Command
	for _, c := range cog.Commands() {
		if err := r.add(c); err != nil {
			for _, a := range added {
				delete(r.commands, a.Name)
				a.setCog("")
			}
			return err
		}
		c.setCog(name)
		added = append(added, c)
	}
	r.cogs[name] = cog
	return nil
}

// RemoveCog tears a cog down: the cog and all of its commands are removed.
func (r *Registry) RemoveCog(name string) ([]*Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cogs[name]; !ok {
		return nil, notFound("cog %q", name)
	}
	delete(r.cogs, name)

	var removed []*Command
	for n, c := range r.commands {
		if c.cog == name {
			delete(r.commands, n)
			removed = append(removed, c)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Name < removed[j].Name })
	return removed, nil
}

// Cogs returns the names of registered cogs, sorted.
func (r *Registry) Cogs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cogs))
	for n := range r.cogs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Command) setCog(name string) {
	c.Walk(func(n *Command, _ int) { n.cog = name })
}
