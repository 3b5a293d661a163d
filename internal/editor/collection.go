package editor

import (
	"resumesync/internal/autosave"
	"resumesync/internal/ordering"
	"resumesync/internal/resume"
)

// Collection edits the ordered entries of one section. Every helper computes
// the new collection from the latest value under the section's lock and goes
// through the normal optimistic save cycle.
type Collection[S autosave.Section[S, P], P any, E any, EP ordering.Placeable[E]] struct {
	machine *autosave.Orchestrator[S, P]
	items   func(S) []E
	patch   func([]E) P
	parent  func(S) int
}

type (
	ContactItems    = Collection[resume.ContactSection, resume.ContactPatch, resume.ContactItem, *resume.ContactItem]
	SkillGroups     = Collection[resume.SkillsSection, resume.SkillsPatch, resume.SkillGroup, *resume.SkillGroup]
	Jobs            = Collection[resume.ExperienceSection, resume.ExperiencePatch, resume.Job, *resume.Job]
	ProjectItems    = Collection[resume.ProjectsSection, resume.ProjectsPatch, resume.Project, *resume.Project]
	EducationItems  = Collection[resume.EducationSection, resume.EducationPatch, resume.EducationItem, *resume.EducationItem]
	LanguageEntries = Collection[resume.LanguagesSection, resume.LanguagesPatch, resume.LanguageItem, *resume.LanguageItem]
)

// Items returns the entries in display order.
func (c *Collection[S, P, E, EP]) Items() []E {
	value, ok := c.machine.Current()
	if !ok {
		return []E{}
	}
	items := c.items(value)
	out := make([]E, len(items))
	copy(out, items)
	return out
}

// Add appends item with a fresh id and returns that id.
func (c *Collection[S, P, E, EP]) Add(item E) (int, <-chan autosave.Result[S]) {
	var id int
	_, done := c.machine.UpdateWith(func(current S) (P, bool) {
		var next []E
		next, id = ordering.Append[E, EP](c.items(current), item, c.parent(current))
		return c.patch(next), true
	})
	return id, done
}

// Edit replaces the entry with item's id. Unknown ids resolve as Skipped.
func (c *Collection[S, P, E, EP]) Edit(item E) <-chan autosave.Result[S] {
	_, done := c.machine.UpdateWith(func(current S) (P, bool) {
		next, ok := ordering.Replace[E, EP](c.items(current), item, c.parent(current))
		return c.patch(next), ok
	})
	return done
}

// Duplicate copies the entry with the given id to the end of the collection
// and returns the copy's id.
func (c *Collection[S, P, E, EP]) Duplicate(id int) (int, <-chan autosave.Result[S]) {
	var newID int
	_, done := c.machine.UpdateWith(func(current S) (P, bool) {
		next, created, ok := ordering.Duplicate[E, EP](c.items(current), id, c.parent(current))
		newID = created
		return c.patch(next), ok
	})
	return newID, done
}

// Delete removes the entry with the given id.
func (c *Collection[S, P, E, EP]) Delete(id int) <-chan autosave.Result[S] {
	_, done := c.machine.UpdateWith(func(current S) (P, bool) {
		items := c.items(current)
		found := false
		for i := range items {
			if EP(&items[i]).EntityID() == id {
				found = true
				break
			}
		}
		return c.patch(ordering.Delete[E, EP](items, id, c.parent(current))), found
	})
	return done
}

// Move shifts the entry at index one place. Moving past either end changes
// nothing and resolves as Skipped.
func (c *Collection[S, P, E, EP]) Move(index int, dir ordering.Direction) <-chan autosave.Result[S] {
	_, done := c.machine.UpdateWith(func(current S) (P, bool) {
		next, ok := ordering.Move[E, EP](c.items(current), index, dir, c.parent(current))
		return c.patch(next), ok
	})
	return done
}
