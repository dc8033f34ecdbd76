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

// CreateUser lets an admin provision worker (or additional admin) accounts.
// Citizen accounts come from the public register endpoint instead.
func CreateUser(c *gin.Context) {
	adminObjID, ok := callerID(c)
	if !ok {
		return
	}

	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone,omitempty"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": bindingErrors(err)})
		return
	}

	if !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		logrus.WithError(err).Error("error checking existing user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists"})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  input.Password,
		Role:      models.UserRole(input.Role),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		logrus.WithError(err).Error("error hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	result, err := userCollection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("error inserting user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		RecordActivity("create", "user", insertedID,
			"Account provisioned with role "+input.Role, bson.M{"role": input.Role}, adminObjID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user": gin.H{
			"id":        result.InsertedID,
			"name":      user.Name,
			"email":     user.Email,
			"phone":     user.Phone,
			"role":      user.Role,
			"createdAt": user.CreatedAt,
		},
	})
}

// ListWorkers returns worker identities for the assignment picker
func ListWorkers(c *gin.Context) {
	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := userCollection.Find(ctx, bson.M{"role": models.RoleWorker}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve workers"})
		return
	}
	defer cursor.Close(ctx)

	var workers []models.User
	if err := cursor.All(ctx, &workers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode workers"})
		return
	}

	response := make([]gin.H, 0, len(workers))
	for _, w := range workers {
		response = append(response, gin.H{
			"id":    w.ID,
			"name":  w.Name,
			"email": w.Email,
			"phone": w.Phone,
		})
	}

	c.JSON(http.StatusOK, response)
}
