package controllers

import (
	"context"
	"net/http"
	"time"

	"nagarseva-be/config"
	"nagarseva-be/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// activityListLimit bounds the audit listing to the newest entries.
const activityListLimit = 200

// RecordActivity appends an audit entry for a mutation. It is fire-and-forget:
// the write runs in its own goroutine with its own timeout, and a failure is
// reported to the operator log but never aborts the triggering mutation.
func RecordActivity(action, entityType string, entityID primitive.ObjectID, message string, meta bson.M, createdBy primitive.ObjectID) {
	entry := models.ActivityLog{
		ID:         primitive.NewObjectID(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Message:    message,
		Meta:       meta,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := config.GetCollection("activitylogs").InsertOne(ctx, entry); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"action":   action,
				"entityId": entityID.Hex(),
			}).Error("failed to record activity log entry")
		}
	}()
}

// ListActivity returns the newest audit entries with creator identities
// resolved. Admin only.
func ListActivity(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(activityListLimit)

	cursor, err := config.GetCollection("activitylogs").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve activity log"})
		return
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLog
	if err := cursor.All(ctx, &entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode activity log"})
		return
	}

	type EntryWithCreator struct {
		models.ActivityLog
		CreatedBy gin.H `json:"createdBy"`
	}

	response := make([]EntryWithCreator, 0, len(entries))
	for _, entry := range entries {
		creator := gin.H{"id": entry.CreatedBy}
		var user models.User
		if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": entry.CreatedBy}).Decode(&user); err == nil {
			creator["name"] = user.Name
			creator["email"] = user.Email
		}
		response = append(response, EntryWithCreator{ActivityLog: entry, CreatedBy: creator})
	}

	c.JSON(http.StatusOK, response)
}
