package etb

import (
	"context"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
)

// supersedeChain entries of one supersede chain, held by ID
type supersedeChain struct {
	entries map[string]models.Entry
	visited map[string]bool
}

func (c *supersedeChain) add(entry models.Entry) bool {
	if c.visited[entry.ID] {
		return false
	}
	c.visited[entry.ID] = true
	c.entries[entry.ID] = entry
	return true
}

// walkBack follow the chain towards the oldest entry, returning it
func (c *supersedeChain) walkBack(
	ctx context.Context, dbClient db.Database, start models.Entry,
) (models.Entry, error) {
	oldest := start
	for {
		previous, err := dbClient.ListEntriesSupersededBy(ctx, oldest.ID)
		if err != nil {
			return models.Entry{}, fromDBError(err, "unable to list entries superseded by %s", oldest.ID)
		}
		if len(previous) == 0 {
			return oldest, nil
		}
		// An entry is superseded at most once, so there is one predecessor
		if !c.add(previous[0]) {
			return oldest, nil
		}
		oldest = previous[0]
	}
}

// walkForward follow the chain from the oldest entry towards the newest, in order
func (c *supersedeChain) walkForward(
	ctx context.Context, dbClient db.Database, oldest models.Entry,
) ([]models.Entry, error) {
	ordered := []models.Entry{oldest}
	current := oldest
	seen := map[string]bool{oldest.ID: true}
	for current.UeberschriebenDurchID != nil {
		nextID := *current.UeberschriebenDurchID
		if seen[nextID] {
			break
		}
		next, ok := c.entries[nextID]
		if !ok {
			fetched, err := dbClient.GetEntriesByIDs(ctx, []string{nextID})
			if err != nil {
				return nil, fromDBError(err, "unable to fetch entry %s", nextID)
			}
			if next, ok = fetched[nextID]; !ok {
				break
			}
			c.add(next)
		}
		seen[nextID] = true
		ordered = append(ordered, next)
		current = next
	}
	return ordered, nil
}

/*
History the supersede chain an entry is part of, oldest first

	@param ctx context.Context - execution context
	@param entryID string - any entry of the chain
	@returns the chain
*/
func (s *service) History(ctx context.Context, entryID string) ([]models.Entry, error) {
	var chain []models.Entry
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			start, err := getEntry(dbCtx, dbClient, entryID)
			if err != nil {
				return err
			}

			walker := &supersedeChain{
				entries: map[string]models.Entry{},
				visited: map[string]bool{},
			}
			walker.add(start)

			oldest, err := walker.walkBack(dbCtx, dbClient, start)
			if err != nil {
				return err
			}
			chain, err = walker.walkForward(dbCtx, dbClient, oldest)
			return err
		},
	); err != nil {
		return nil, s.fail(ctx, "history", fromDBError(err, "unable to resolve entry history"))
	}
	return chain, nil
}
