package etb

import (
	"context"
	"strings"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/google/uuid"
)

// insertEntry number and persist a new entry within an active transaction
func (s *service) insertEntry(
	ctx context.Context, dbClient db.Database, actor models.Actor, entry models.Entry,
) (models.Entry, error) {
	nummer, err := dbClient.NextLaufendeNummer(ctx)
	if err != nil {
		return models.Entry{}, fromDBError(err, "unable to assign entry number")
	}

	entry.ID = uuid.NewString()
	entry.LaufendeNummer = nummer
	entry.TimestampErstellung = s.now()
	entry.AutorID = actor.ID
	entry.AutorName = actor.NamePtr()
	entry.AutorRolle = actor.RolePtr()
	entry.Version = 1
	entry.Status = models.EntryStatusActive
	entry.IstAbgeschlossen = false

	stored, err := dbClient.InsertEntry(ctx, entry)
	if err != nil {
		return models.Entry{}, fromDBError(err, "unable to store entry")
	}

	if _, err := dbClient.RecordAuditEvent(
		ctx,
		models.AuditEventTypeEntryCreated,
		&stored.ID,
		&actor.ID,
		models.AuditEventEntryRelated{LaufendeNummer: stored.LaufendeNummer, Version: stored.Version},
	); err != nil {
		return models.Entry{}, internal(err, "unable to record audit event")
	}

	return stored, nil
}

/*
Create log a new entry

	@param ctx context.Context - execution context
	@param actor models.Actor - the author
	@param input CreateEntryInput - entry content
	@returns the new entry
*/
func (s *service) Create(
	ctx context.Context, actor models.Actor, input CreateEntryInput,
) (models.Entry, error) {
	if err := s.checkActor(actor); err != nil {
		return models.Entry{}, s.fail(ctx, "create", err)
	}
	input.Inhalt = strings.TrimSpace(input.Inhalt)
	if err := s.validator.Struct(&input); err != nil {
		return models.Entry{}, s.fail(ctx, "create", badRequest(err, "invalid entry"))
	}

	var created models.Entry
	if err := s.persistence.UseDatabaseInTransaction(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			created, err = s.insertEntry(dbCtx, dbClient, actor, models.Entry{
				TimestampEreignis:       input.TimestampEreignis.UTC(),
				Kategorie:               input.Kategorie,
				Inhalt:                  input.Inhalt,
				ReferenzEinsatzID:       input.ReferenzEinsatzID,
				ReferenzPatientID:       input.ReferenzPatientID,
				ReferenzEinsatzmittelID: input.ReferenzEinsatzmittelID,
				Sender:                  input.Sender,
				Receiver:                input.Receiver,
			})
			return err
		},
	); err != nil {
		return models.Entry{}, s.fail(ctx, "create", fromDBError(err, "unable to create entry"))
	}

	entriesCreatedTotal.WithLabelValues(string(created.Kategorie)).Inc()
	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("entry_id", created.ID).
		WithField("laufende_nummer", created.LaufendeNummer).
		WithField("autor_id", created.AutorID).
		Info("Created operations log entry")

	return created, nil
}

/*
FindAll list entries

	@param ctx context.Context - execution context
	@param filter EntryFilter - listing parameters
	@returns one page of entries
*/
func (s *service) FindAll(ctx context.Context, filter EntryFilter) (EntryPage, error) {
	if err := s.validator.Struct(&filter); err != nil {
		return EntryPage{}, s.fail(ctx, "find-all", badRequest(err, "invalid entry filter"))
	}
	if filter.VonZeitstempel != nil && filter.BisZeitstempel != nil &&
		filter.VonZeitstempel.After(*filter.BisZeitstempel) {
		return EntryPage{}, s.fail(
			ctx, "find-all", badRequest(nil, "time range start is after its end"),
		)
	}

	filter.VonZeitstempel = utcTime(filter.VonZeitstempel)
	filter.BisZeitstempel = utcTime(filter.BisZeitstempel)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return EntryPage{}, s.fail(
			ctx, "find-all", badRequest(nil, "page %d is beyond the last possible page", page),
		)
	}
	limit := filter.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := (page - 1) * limit

	query := db.EntryQueryFilter{
		CommonListEntryQueryFilter: db.CommonListEntryQueryFilter{Limit: &limit, Offset: &offset},
		Kategorie:                  filter.Kategorie,
		ReferenzEinsatzID:          filter.ReferenzEinsatzID,
		ReferenzPatientID:          filter.ReferenzPatientID,
		ReferenzEinsatzmittelID:    filter.ReferenzEinsatzmittelID,
		AutorID:                    filter.AutorID,
		EventsAfter:                filter.VonZeitstempel,
		EventsBefore:               filter.BisZeitstempel,
		IncludeSuperseded:          filter.IncludeUeberschrieben,
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := strings.TrimSpace(*filter.Search)
		query.Search = &search
	}

	var entries []models.Entry
	var total int64
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entries, total, err = dbClient.ListEntries(dbCtx, query)
			return err
		},
	); err != nil {
		return EntryPage{}, s.fail(ctx, "find-all", fromDBError(err, "unable to list entries"))
	}

	if entries == nil {
		entries = []models.Entry{}
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return EntryPage{
		Items: entries,
		Pagination: Pagination{
			CurrentPage:  page,
			ItemsPerPage: limit,
			TotalItems:   total,
			TotalPages:   totalPages,
		},
	}, nil
}

// hydrateEntry load the attachments and superseded entries of an entry
func hydrateEntry(ctx context.Context, dbClient db.Database, entry *models.Entry) error {
	attachments, err := dbClient.ListAttachmentsOfEntry(ctx, entry.ID)
	if err != nil {
		return fromDBError(err, "unable to list attachments of entry %s", entry.ID)
	}
	entry.Anlagen = attachments

	superseded, err := dbClient.ListEntriesSupersededBy(ctx, entry.ID)
	if err != nil {
		return fromDBError(err, "unable to list entries superseded by %s", entry.ID)
	}
	entry.UeberschriebeneEintraege = nil
	for _, previous := range superseded {
		entry.UeberschriebeneEintraege = append(entry.UeberschriebeneEintraege, previous.Reference())
	}
	return nil
}

// getEntry fetch an entry, reporting a missing entry as NotFound
func getEntry(ctx context.Context, dbClient db.Database, entryID string) (models.Entry, error) {
	entry, err := dbClient.GetEntry(ctx, entryID)
	if err != nil {
		return models.Entry{}, fromDBError(err, "entry %s not found", entryID)
	}
	return entry, nil
}

/*
FindOne fetch an entry with its attachments and superseded entries

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@returns the entry
*/
func (s *service) FindOne(ctx context.Context, entryID string) (models.Entry, error) {
	var entry models.Entry
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			if entry, err = getEntry(dbCtx, dbClient, entryID); err != nil {
				return err
			}
			return hydrateEntry(dbCtx, dbClient, &entry)
		},
	); err != nil {
		return models.Entry{}, s.fail(ctx, "find-one", fromDBError(err, "unable to fetch entry"))
	}
	return entry, nil
}

// checkEntryOpen reject changes to closed or superseded entries
func checkEntryOpen(entry models.Entry) error {
	if entry.IstAbgeschlossen {
		return badRequest(nil, "entry %d is already closed", entry.LaufendeNummer)
	}
	if entry.IsSuperseded() {
		return badRequest(nil, "entry %d is already superseded", entry.LaufendeNummer)
	}
	return nil
}

/*
Update change content fields of an open, active entry

	@param ctx context.Context - execution context
	@param actor models.Actor - who is changing the entry
	@param entryID string - entry ID
	@param input UpdateEntryInput - the changes
	@returns the updated entry
*/
func (s *service) Update(
	ctx context.Context, actor models.Actor, entryID string, input UpdateEntryInput,
) (models.Entry, error) {
	if err := s.checkActor(actor); err != nil {
		return models.Entry{}, s.fail(ctx, "update", err)
	}
	if input.Inhalt != nil {
		trimmed := strings.TrimSpace(*input.Inhalt)
		input.Inhalt = &trimmed
	}
	if err := s.validator.Struct(&input); err != nil {
		return models.Entry{}, s.fail(ctx, "update", badRequest(err, "invalid entry update"))
	}
	if input.IsEmpty() {
		return models.Entry{}, s.fail(ctx, "update", badRequest(nil, "no fields to update"))
	}
	if input.TimestampEreignis != nil {
		utc := input.TimestampEreignis.UTC()
		input.TimestampEreignis = &utc
	}

	var updated models.Entry
	if err := s.persistence.UseDatabaseInTransaction(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			current, err := getEntry(dbCtx, dbClient, entryID)
			if err != nil {
				return err
			}
			if err := checkEntryOpen(current); err != nil {
				return err
			}

			expectedVersion := current.Version
			if input.ExpectedVersion != nil {
				if *input.ExpectedVersion != current.Version {
					return newError(
						ErrorKindConflict,
						nil,
						"entry %d is at version %d, not %d",
						current.LaufendeNummer,
						current.Version,
						*input.ExpectedVersion,
					)
				}
				expectedVersion = *input.ExpectedVersion
			}

			if updated, err = dbClient.UpdateEntryFields(
				dbCtx, entryID, expectedVersion, input.EntryFieldUpdate,
			); err != nil {
				return fromDBError(err, "entry %d changed concurrently", current.LaufendeNummer)
			}

			if _, err := dbClient.RecordAuditEvent(
				dbCtx,
				models.AuditEventTypeEntryUpdated,
				&updated.ID,
				&actor.ID,
				models.AuditEventEntryRelated{
					LaufendeNummer: updated.LaufendeNummer, Version: updated.Version,
				},
			); err != nil {
				return internal(err, "unable to record audit event")
			}

			return hydrateEntry(dbCtx, dbClient, &updated)
		},
	); err != nil {
		return models.Entry{}, s.fail(ctx, "update", fromDBError(err, "unable to update entry"))
	}

	entriesUpdatedTotal.Inc()
	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("entry_id", updated.ID).
		WithField("version", updated.Version).
		Info("Updated operations log entry")

	return updated, nil
}

/*
Close mark an entry as closed. Closed entries can not be changed anymore.

	@param ctx context.Context - execution context
	@param actor models.Actor - who is closing the entry
	@param entryID string - entry ID
	@returns the closed entry
*/
func (s *service) Close(ctx context.Context, actor models.Actor, entryID string) (models.Entry, error) {
	if err := s.checkActor(actor); err != nil {
		return models.Entry{}, s.fail(ctx, "close", err)
	}

	var closed models.Entry
	if err := s.persistence.UseDatabaseInTransaction(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			current, err := getEntry(dbCtx, dbClient, entryID)
			if err != nil {
				return err
			}
			if current.IstAbgeschlossen {
				return badRequest(nil, "entry %d is already closed", current.LaufendeNummer)
			}

			if closed, err = dbClient.CloseEntry(dbCtx, entryID, actor.ID, s.now()); err != nil {
				return fromDBError(err, "entry %d changed concurrently", current.LaufendeNummer)
			}

			if _, err := dbClient.RecordAuditEvent(
				dbCtx,
				models.AuditEventTypeEntryClosed,
				&closed.ID,
				&actor.ID,
				models.AuditEventEntryRelated{
					LaufendeNummer: closed.LaufendeNummer, Version: closed.Version,
				},
			); err != nil {
				return internal(err, "unable to record audit event")
			}

			return hydrateEntry(dbCtx, dbClient, &closed)
		},
	); err != nil {
		return models.Entry{}, s.fail(ctx, "close", fromDBError(err, "unable to close entry"))
	}

	entriesClosedTotal.Inc()
	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("entry_id", closed.ID).
		WithField("abgeschlossen_von", actor.ID).
		Info("Closed operations log entry")

	return closed, nil
}

/*
Supersede replace an entry with a new entry. The original is kept, marked as superseded.

	@param ctx context.Context - execution context
	@param actor models.Actor - author of the replacement
	@param entryID string - the entry to replace
	@param input SupersedeEntryInput - content of the replacement
	@returns the replacement entry
*/
func (s *service) Supersede(
	ctx context.Context, actor models.Actor, entryID string, input SupersedeEntryInput,
) (models.Entry, error) {
	if err := s.checkActor(actor); err != nil {
		return models.Entry{}, s.fail(ctx, "supersede", err)
	}
	input.Inhalt = strings.TrimSpace(input.Inhalt)
	if err := s.validator.Struct(&input); err != nil {
		return models.Entry{}, s.fail(
			ctx, "supersede", badRequest(err, "invalid replacement entry"),
		)
	}

	var successor models.Entry
	if err := s.persistence.UseDatabaseInTransaction(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			original, err := getEntry(dbCtx, dbClient, entryID)
			if err != nil {
				return err
			}
			if err := checkEntryOpen(original); err != nil {
				return err
			}

			replacement := models.Entry{
				TimestampEreignis:       original.TimestampEreignis,
				Kategorie:               original.Kategorie,
				Inhalt:                  input.Inhalt,
				ReferenzEinsatzID:       original.ReferenzEinsatzID,
				ReferenzPatientID:       original.ReferenzPatientID,
				ReferenzEinsatzmittelID: original.ReferenzEinsatzmittelID,
				Sender:                  original.Sender,
				Receiver:                original.Receiver,
			}
			if input.TimestampEreignis != nil {
				replacement.TimestampEreignis = input.TimestampEreignis.UTC()
			}
			if input.Kategorie != nil {
				replacement.Kategorie = *input.Kategorie
			}
			if input.ReferenzEinsatzID != nil {
				replacement.ReferenzEinsatzID = input.ReferenzEinsatzID
			}
			if input.ReferenzPatientID != nil {
				replacement.ReferenzPatientID = input.ReferenzPatientID
			}
			if input.ReferenzEinsatzmittelID != nil {
				replacement.ReferenzEinsatzmittelID = input.ReferenzEinsatzmittelID
			}
			if input.Sender != nil {
				replacement.Sender = input.Sender
			}
			if input.Receiver != nil {
				replacement.Receiver = input.Receiver
			}

			if successor, err = s.insertEntry(dbCtx, dbClient, actor, replacement); err != nil {
				return err
			}

			if _, err := dbClient.MarkEntrySuperseded(
				dbCtx, original.ID, successor.ID, actor.ID, s.now(),
			); err != nil {
				return fromDBError(err, "entry %d changed concurrently", original.LaufendeNummer)
			}

			if _, err := dbClient.RecordAuditEvent(
				dbCtx,
				models.AuditEventTypeEntrySuperseded,
				&original.ID,
				&actor.ID,
				models.AuditEventEntrySuperseded{
					OriginalID:  original.ID,
					SuccessorID: successor.ID,
					Reason:      strings.TrimSpace(input.Grund),
				},
			); err != nil {
				return internal(err, "unable to record audit event")
			}

			return hydrateEntry(dbCtx, dbClient, &successor)
		},
	); err != nil {
		return models.Entry{}, s.fail(
			ctx, "supersede", fromDBError(err, "unable to supersede entry"),
		)
	}

	entriesCreatedTotal.WithLabelValues(string(successor.Kategorie)).Inc()
	entriesSupersededTotal.Inc()
	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("entry_id", entryID).
		WithField("successor_id", successor.ID).
		WithField("laufende_nummer", successor.LaufendeNummer).
		Info("Superseded operations log entry")

	return successor, nil
}
