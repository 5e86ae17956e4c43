package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusconnect/campus-events-api/config"
	"github.com/campusconnect/campus-events-api/databases"
	"github.com/campusconnect/campus-events-api/databases/mocks"
	"github.com/campusconnect/campus-events-api/models"
)

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func TestNewCheckInDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	checkInDB := databases.NewCheckInDatabase(db)

	assert.NotEmpty(t, checkInDB)
}

func TestCheckInDatabase_InsertFirstCreated(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", mock.Anything, mock.Anything).
		Return(&mocks.InsertOneResultHelper{}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "checkins").Return(collectionHelper)

	checkInDba := databases.NewCheckInDatabase(dbHelper)

	checkIn := models.CheckIn{
		ID: primitive.NewObjectID(),
		Details: models.CheckInDetails{
			UserID:  "user-1",
			EventID: "event-1",
		},
	}

	outcome, err := checkInDba.InsertFirst(context.Background(), checkIn)

	assert.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, "user-1", outcome.CheckIn.Details.UserID)
}

func TestCheckInDatabase_InsertFirstDuplicateRereadsWinner(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperWinner databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperWinner = &mocks.SingleResultHelper{}

	winnerID := primitive.NewObjectID()
	winnerTime := primitive.DateTime(1700000000000)

	srHelperWinner.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CheckIn)
		(*arg).ID = winnerID
		(*arg).Details.UserID = "user-1"
		(*arg).Details.EventID = "event-1"
		(*arg).Details.CheckInTime = winnerTime
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", mock.Anything, mock.Anything).
		Return(nil, duplicateKeyErr())

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", mock.Anything, mock.Anything).
		Return(srHelperWinner)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "checkins").Return(collectionHelper)

	checkInDba := databases.NewCheckInDatabase(dbHelper)

	checkIn := models.CheckIn{
		ID: primitive.NewObjectID(),
		Details: models.CheckInDetails{
			UserID:  "user-1",
			EventID: "event-1",
		},
	}

	outcome, err := checkInDba.InsertFirst(context.Background(), checkIn)

	assert.NoError(t, err)
	assert.False(t, outcome.Created)
	assert.Equal(t, winnerID, outcome.CheckIn.ID)
	assert.Equal(t, winnerTime, outcome.CheckIn.Details.CheckInTime)
}

func TestCheckInDatabase_InsertFirstOtherErrorPassesThrough(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", mock.Anything, mock.Anything).
		Return(nil, errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "checkins").Return(collectionHelper)

	checkInDba := databases.NewCheckInDatabase(dbHelper)

	outcome, err := checkInDba.InsertFirst(context.Background(), models.CheckIn{})

	assert.EqualError(t, err, "mocked-error")
	assert.False(t, outcome.Created)
	assert.Nil(t, outcome.CheckIn)
}

func TestCheckInDatabase_FindOne(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CheckIn)
		(*arg).Details.UserID = "mocked-user"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bsonFilter(true)).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bsonFilter(false)).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "checkins").Return(collectionHelper)

	checkInDba := databases.NewCheckInDatabase(dbHelper)

	checkIn, err := checkInDba.FindOne(context.Background(), bsonFilter(true))

	assert.Empty(t, checkIn)
	assert.EqualError(t, err, "mocked-error")

	checkIn, err = checkInDba.FindOne(context.Background(), bsonFilter(false))

	assert.NoError(t, err)
	assert.Equal(t, "mocked-user", checkIn.Details.UserID)
}

func bsonFilter(isErr bool) map[string]interface{} {
	return map[string]interface{}{"error": isErr}
}
