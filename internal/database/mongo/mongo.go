package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"weatherbot/entity"
	"weatherbot/internal/config"
	"weatherbot/internal/lib/sl"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	subscriptionsCollection = "subscriptions"
)

// MongoDB persists daily-delivery subscriptions: the wall-clock
// target and timezone name per actor, never a precomputed fire
// instant, so schedules stay correct across DST changes between
// restarts.
type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

// SaveSubscription stores or replaces an actor's daily delivery
// subscription.
func (m *MongoDB) SaveSubscription(sub *entity.Subscription) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(subscriptionsCollection)

	filter := bson.M{"actor_id": sub.ActorID}
	update := bson.M{"$set": sub}
	opts := options.Update().SetUpsert(true)
	if _, err = collection.UpdateOne(m.ctx, filter, update, opts); err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}

	m.log.With(
		slog.Int64("actor_id", sub.ActorID),
		slog.String("time", sub.Time.String()),
		slog.String("timezone", sub.Timezone),
	).Debug("subscription saved")
	return nil
}

// GetSubscription returns an actor's subscription, or nil when the
// actor has not opted in.
func (m *MongoDB) GetSubscription(actorID int64) (*entity.Subscription, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(subscriptionsCollection)

	var sub entity.Subscription
	err = collection.FindOne(m.ctx, bson.M{"actor_id": actorID}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &sub, nil
}

// DeleteSubscription removes an actor's subscription. Returns whether
// one existed.
func (m *MongoDB) DeleteSubscription(actorID int64) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(subscriptionsCollection)

	result, err := collection.DeleteOne(m.ctx, bson.M{"actor_id": actorID})
	if err != nil {
		return false, fmt.Errorf("mongodb delete error: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// ListSubscriptions returns every stored subscription; used at
// startup to re-arm the scheduler.
func (m *MongoDB) ListSubscriptions() ([]entity.Subscription, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(subscriptionsCollection)

	cursor, err := collection.Find(m.ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(m.ctx)

	var subs []entity.Subscription
	if err = cursor.All(m.ctx, &subs); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}
	return subs, nil
}
