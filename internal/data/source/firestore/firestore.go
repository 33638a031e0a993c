// Package firestore follows the applications collection through Firestore's
// native query snapshots.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Config selects the project and collection. CredentialsFile may be empty to
// use application default credentials or FIRESTORE_EMULATOR_HOST.
type Config struct {
	ProjectID       string
	Collection      string
	CredentialsFile string
}

// document is the stored shape of a record. The id lives in the document
// name, not in a field.
type document struct {
	Company   string     `firestore:"company"`
	JobTitle  string     `firestore:"job_title"`
	Link      string     `firestore:"link"`
	Status    string     `firestore:"status"`
	Timestamp *time.Time `firestore:"timestamp"`
}

func (d document) record(id string) model.ApplicationRecord {
	return model.ApplicationRecord{
		ID:        id,
		Company:   d.Company,
		JobTitle:  d.JobTitle,
		Link:      d.Link,
		Status:    d.Status,
		Timestamp: d.Timestamp,
	}
}

func toDocument(r model.ApplicationRecord) document {
	return document{
		Company:   r.Company,
		JobTitle:  r.JobTitle,
		Link:      r.Link,
		Status:    r.Status,
		Timestamp: r.Timestamp,
	}
}

type Source struct {
	client     *firestore.Client
	collection string

	mu     sync.Mutex
	closed bool
}

func Open(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore project id is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = model.CollectionApplications
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Source{client: client, collection: cfg.Collection}, nil
}

func (s *Source) query(q source.Query) firestore.Query {
	dir := firestore.Asc
	if q.Descending {
		dir = firestore.Desc
	}
	return s.client.Collection(s.collection).OrderBy(q.OrderBy, dir).Limit(q.Limit)
}

// Put writes records by id, for fixtures and the emulator. Writes run in a
// BulkWriter; every rejected write is reported.
func (s *Source) Put(ctx context.Context, records ...model.ApplicationRecord) error {
	bw := s.client.BulkWriter(ctx)
	jobs := make([]writeJob, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		job, err := bw.Set(s.client.Collection(s.collection).Doc(r.ID), toDocument(r))
		if err != nil {
			bw.End()
			return errors.Join(fmt.Errorf("writing %s: %w", r.ID, err), collectResults(ids, jobs))
		}
		jobs = append(jobs, job)
		ids = append(ids, r.ID)
	}
	bw.End()
	return collectResults(ids, jobs)
}

// writeJob is the part of *firestore.BulkWriterJob that Put reads.
type writeJob interface {
	Results() (*firestore.WriteResult, error)
}

// collectResults waits for every job and joins the failures.
func collectResults(ids []string, jobs []writeJob) error {
	var errs []error
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", ids[i], err))
		}
	}
	return errors.Join(errs...)
}

func (s *Source) Subscribe(ctx context.Context, q source.Query) (*source.Stream, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, source.ErrClosed
	}

	return source.Open(ctx, source.KindFirestore, func(ctx context.Context, p *source.Publisher) error {
		it := s.query(q).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return nil
				}
				return fmt.Errorf("listening to %s: %w", s.collection, err)
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}

			records := make([]model.ApplicationRecord, 0, len(docs))
			for _, doc := range docs {
				var d document
				if err := doc.DataTo(&d); err != nil {
					util.LogWarn("Skip undecodable document", util.F("id", doc.Ref.ID), util.F("error", err))
					continue
				}
				records = append(records, d.record(doc.Ref.ID))
			}

			if !p.Publish(source.Snapshot{Records: records, ReadAt: snap.ReadTime}) {
				return nil
			}
		}
	}), nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
