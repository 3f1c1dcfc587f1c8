// Package mongo is the document [repository.Repository] backend: a
// MongoDB collection per vault, for deployments that already run a
// document store as shared infrastructure instead of a relational one.
//
// Unlike the sqlite and postgres backends, there is no forward-only SQL
// migration set here: Mongo is schemaless, so schema_version is tracked as
// a single document in a dedicated collection, and InitSchema's job is
// limited to index creation.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Store is the mongo-backed [repository.Repository].
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	items  *mongo.Collection
	auth   *mongo.Collection
	schema *mongo.Collection
}

// Open connects to the given URI and selects dbName as the vault's
// database. It does not apply schema setup; call [Store.InitSchema] for
// that.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, errf("mongo ping: %w", err)
	}

	db := client.Database(dbName)

	return &Store{
		client: client,
		db:     db,
		items:  db.Collection("vault_items"),
		auth:   db.Collection("auth_bootstrap"),
		schema: db.Collection("schema_version"),
	}, nil
}

var _ repository.Repository = (*Store)(nil)

func (*Store) Kind() repository.Kind { return repository.KindDocument }

func (s *Store) InitSchema(ctx context.Context) error {
	version, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}

	if version > repository.CurrentSchemaVersion {
		return chacraberrors.ErrSchemaNewerThanBinary
	}

	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "deleted", Value: 1}}},
	}

	if _, err := s.items.Indexes().CreateMany(ctx, idx); err != nil {
		return repository.BackendError(repository.KindDocument, errf("creating indexes: %w", err))
	}

	if version == 0 {
		return s.SetSchemaVersion(ctx, repository.CurrentSchemaVersion)
	}

	return nil
}

// authDoc and itemDoc mirror [model.AuthBootstrap] and [model.VaultItem]
// with bson tags; kept distinct from the model types so storage encoding
// concerns never leak into the domain model.
type authDoc struct {
	ID          int    `bson:"_id"`
	Salt        []byte `bson:"salt"`
	Verifier    string `bson:"verifier"`
	MemoryKiB   uint32 `bson:"kdf_memory_kib"`
	Iterations  uint32 `bson:"kdf_iterations"`
	Parallelism uint8  `bson:"kdf_parallelism"`
}

func (s *Store) LoadAuth(ctx context.Context) (*model.AuthBootstrap, error) {
	var doc authDoc

	err := s.auth.FindOne(ctx, bson.D{{Key: "_id", Value: 0}}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}

		return nil, repository.BackendError(repository.KindDocument, err)
	}

	return &model.AuthBootstrap{
		Salt:     doc.Salt,
		Verifier: doc.Verifier,
		KDFParams: model.KDFParams{
			MemoryKiB:   doc.MemoryKiB,
			Iterations:  doc.Iterations,
			Parallelism: doc.Parallelism,
		},
	}, nil
}

func (s *Store) SaveAuth(ctx context.Context, auth model.AuthBootstrap) error {
	existing, err := s.LoadAuth(ctx)
	if err != nil {
		return err
	}

	if existing != nil {
		return chacraberrors.ErrAlreadyRegistered
	}

	doc := authDoc{
		ID:          0,
		Salt:        auth.Salt,
		Verifier:    auth.Verifier,
		MemoryKiB:   auth.KDFParams.MemoryKiB,
		Iterations:  auth.KDFParams.Iterations,
		Parallelism: auth.KDFParams.Parallelism,
	}

	if _, err := s.auth.InsertOne(ctx, doc); err != nil {
		return repository.BackendError(repository.KindDocument, err)
	}

	return nil
}

type itemDoc struct {
	ID          string    `bson:"_id"`
	Kind        string    `bson:"kind"`
	Title       string    `bson:"title"`
	Username    string    `bson:"username"`
	URL         string    `bson:"url"`
	Ciphertext  []byte    `bson:"ciphertext,omitempty"`
	Nonce       []byte    `bson:"nonce,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
	SyncVersion int64     `bson:"sync_version"`
	Deleted     bool      `bson:"deleted"`
}

func docFromItem(item model.VaultItem) itemDoc {
	return itemDoc{
		ID:          item.ID.String(),
		Kind:        string(item.Kind),
		Title:       item.Title,
		Username:    item.Username,
		URL:         item.URL,
		Ciphertext:  item.Ciphertext,
		Nonce:       item.Nonce,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		SyncVersion: item.SyncVersion,
		Deleted:     item.Deleted,
	}
}

func itemFromDoc(doc itemDoc) (model.VaultItem, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return model.VaultItem{}, errf("parsing stored id %q: %w", doc.ID, err)
	}

	return model.VaultItem{
		ID:          id,
		Kind:        model.Kind(doc.Kind),
		Title:       doc.Title,
		Username:    doc.Username,
		URL:         doc.URL,
		Ciphertext:  doc.Ciphertext,
		Nonce:       doc.Nonce,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		SyncVersion: doc.SyncVersion,
		Deleted:     doc.Deleted,
	}, nil
}

func (s *Store) listFiltered(ctx context.Context, filter bson.D) ([]model.VaultItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := s.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, repository.BackendError(repository.KindDocument, err)
	}
	defer cur.Close(ctx)

	var items []model.VaultItem

	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, repository.BackendError(repository.KindDocument, err)
		}

		item, err := itemFromDoc(doc)
		if err != nil {
			return nil, repository.BackendError(repository.KindDocument, err)
		}

		items = append(items, item)
	}

	if err := cur.Err(); err != nil {
		return nil, repository.BackendError(repository.KindDocument, err)
	}

	return items, nil
}

func (s *Store) List(ctx context.Context) ([]model.VaultItem, error) {
	return s.listFiltered(ctx, bson.D{{Key: "deleted", Value: false}})
}

func (s *Store) ListWithTombstones(ctx context.Context) ([]model.VaultItem, error) {
	return s.listFiltered(ctx, bson.D{})
}

// Get resolves idOrPrefix against every item including tombstones, so a
// deleted id still matches (callers that must exclude tombstones, like
// vaultservice, check item.Deleted themselves).
func (s *Store) Get(ctx context.Context, idOrPrefix string) (model.VaultItem, error) {
	all, err := s.ListWithTombstones(ctx)
	if err != nil {
		return model.VaultItem{}, err
	}

	ids := make([]uuid.UUID, 0, len(all))
	for _, it := range all {
		ids = append(ids, it.ID)
	}

	id, err := repository.MatchPrefix(ids, idOrPrefix)
	if err != nil {
		return model.VaultItem{}, err
	}

	for _, it := range all {
		if it.ID == id {
			return it, nil
		}
	}

	return model.VaultItem{}, chacraberrors.ErrNotFound
}

func (s *Store) Upsert(ctx context.Context, item model.VaultItem) error {
	doc := docFromItem(item)

	opts := options.Replace().SetUpsert(true)

	_, err := s.items.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, opts)
	if err != nil {
		return repository.BackendError(repository.KindDocument, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (model.VaultItem, error) {
	existing, err := s.Get(ctx, id.String())
	if err != nil {
		return model.VaultItem{}, err
	}

	if existing.Deleted {
		return existing, nil
	}

	now := time.Now().UTC()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "ciphertext", Value: nil},
		{Key: "nonce", Value: nil},
		{Key: "updated_at", Value: now},
		{Key: "deleted", Value: true},
	}}, {Key: "$inc", Value: bson.D{{Key: "sync_version", Value: int64(1)}}}}

	if _, err := s.items.UpdateOne(ctx, bson.D{{Key: "_id", Value: id.String()}}, update); err != nil {
		return model.VaultItem{}, repository.BackendError(repository.KindDocument, err)
	}

	existing.Ciphertext = nil
	existing.Nonce = nil
	existing.Deleted = true
	existing.SyncVersion++
	existing.UpdatedAt = now

	return existing, nil
}

type schemaDoc struct {
	ID      int `bson:"_id"`
	Version int `bson:"version"`
}

func (s *Store) GetSchemaVersion(ctx context.Context) (int, error) {
	var doc schemaDoc

	err := s.schema.FindOne(ctx, bson.D{{Key: "_id", Value: 0}}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}

		return 0, repository.BackendError(repository.KindDocument, err)
	}

	return doc.Version, nil
}

func (s *Store) SetSchemaVersion(ctx context.Context, version int) error {
	opts := options.Replace().SetUpsert(true)

	_, err := s.schema.ReplaceOne(ctx, bson.D{{Key: "_id", Value: 0}}, schemaDoc{ID: 0, Version: version}, opts)
	if err != nil {
		return repository.BackendError(repository.KindDocument, err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
