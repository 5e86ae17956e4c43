package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusconnect/campus-events-api/api/handlers"
	"github.com/campusconnect/campus-events-api/databases"
	mocksdb "github.com/campusconnect/campus-events-api/databases/mocks"
	"github.com/campusconnect/campus-events-api/models"
)

func TestAuth_OrganizerLoginHandlerUnknownEmail(t *testing.T) {
	body := `{"email": "nobody@campus.edu", "password": "hunter22"}`
	req, err := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	userColl := &mocksdb.CollectionHelper{}
	srMiss := &mocksdb.SingleResultHelper{}

	srMiss.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	userColl.On("FindOne", mock.Anything, mock.Anything).Return(srMiss)
	db.On("Collection", "users").Return(userColl)

	h := handlers.Auth{UDB: databases.NewUserDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.OrganizerLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error": "Invalid credentials"}`, rr.Body.String())
}

func TestAuth_OrganizerLoginHandlerWrongPassword(t *testing.T) {
	body := `{"email": "casey@campus.edu", "password": "wrong"}`
	req, err := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)

	db := &mocksdb.DatabaseHelper{}
	userColl := &mocksdb.CollectionHelper{}
	srUser := &mocksdb.SingleResultHelper{}

	srUser.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).Details.Email = "casey@campus.edu"
		(*arg).Details.Password = string(hashed)
	})
	userColl.On("FindOne", mock.Anything, mock.Anything).Return(srUser)
	db.On("Collection", "users").Return(userColl)

	h := handlers.Auth{UDB: databases.NewUserDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.OrganizerLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error": "Invalid credentials"}`, rr.Body.String())
}

func TestAuth_OrganizerLoginHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	body := `{"email": "Casey@Campus.edu", "password": "hunter22"}`
	req, err := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	userID := primitive.NewObjectID()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)

	db := &mocksdb.DatabaseHelper{}
	userColl := &mocksdb.CollectionHelper{}
	srUser := &mocksdb.SingleResultHelper{}

	srUser.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
		(*arg).Details.Name = "Casey Park"
		(*arg).Details.Email = "casey@campus.edu"
		(*arg).Details.Password = string(hashed)
		(*arg).Details.Role = "organizer"
	})
	userColl.On("FindOne", mock.Anything, mock.Anything).Return(srUser)
	db.On("Collection", "users").Return(userColl)

	h := handlers.Auth{UDB: databases.NewUserDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.OrganizerLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token     string `json:"token"`
		Organizer struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"organizer"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, userID.Hex(), resp.Organizer.ID)
	assert.Equal(t, "casey@campus.edu", resp.Organizer.Email)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "organizer", claims["scope"])
	assert.Equal(t, userID.Hex(), claims["sub"])
}
