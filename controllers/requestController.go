package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nagarseva-be/config"
	"nagarseva-be/models"
	authUtils "nagarseva-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// callerID extracts the authenticated user's ObjectID from the context set by
// the auth middleware.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return objID, true
}

func isAdmin(c *gin.Context) bool {
	roleVal, _ := c.Get("role")
	role, _ := roleVal.(string)
	return role == "admin"
}

// fetchRequest loads the request addressed by the :id param, writing the
// NotFound/ServerError response itself when the lookup fails.
func fetchRequest(c *gin.Context, ctx context.Context, d Domain) (*models.ServiceRequest, bool) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
		return nil, false
	}

	var request models.ServiceRequest
	err = config.GetCollection(d.Collection).FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve request"})
		}
		return nil, false
	}
	return &request, true
}

// resolveUserProfile looks up a user's display fields for embedding in
// responses. Falls back to just the id when the lookup fails.
func resolveUserProfile(ctx context.Context, id primitive.ObjectID) gin.H {
	profile := gin.H{"id": id}
	var user models.User
	if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err == nil {
		profile["name"] = user.Name
		profile["email"] = user.Email
		profile["phone"] = user.Phone
	}
	return profile
}

// CreateRequest handles a citizen submitting a new service request. The
// verification pin is generated here, exactly once, and never regenerated.
func CreateRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		createdByID, ok := callerID(c)
		if !ok {
			return
		}

		var input struct {
			Name      string   `json:"name" binding:"required,max=100"`
			Address   string   `json:"address" binding:"required,max=300"`
			Phone     string   `json:"phone" binding:"required,max=20"`
			WasteType *string  `json:"wasteType,omitempty"`
			IssueType *string  `json:"issueType,omitempty"`
			Latitude  *float64 `json:"latitude,omitempty"`
			Longitude *float64 `json:"longitude,omitempty"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": bindingErrors(err)})
			return
		}

		// Each domain requires its own typed category field
		var category *string
		if d.Name == models.DomainWaste {
			category = input.WasteType
		} else {
			category = input.IssueType
		}
		if category == nil || *category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": []string{d.TypeField + " is required"}})
			return
		}
		if !d.TypeValues[*category] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + d.TypeField})
			return
		}

		request := models.ServiceRequest{
			ID:              primitive.NewObjectID(),
			Domain:          d.Name,
			Name:            input.Name,
			Address:         input.Address,
			Phone:           input.Phone,
			Latitude:        input.Latitude,
			Longitude:       input.Longitude,
			Status:          models.StatusPending,
			VerificationPin: authUtils.GeneratePin(),
			Reports:         []models.Report{},
			CreatedBy:       createdByID,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if d.Name == models.DomainWaste {
			request.WasteType = category
		} else {
			request.IssueType = category
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := config.GetCollection(d.Collection).InsertOne(ctx, request)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create request"})
			return
		}

		RecordActivity("create", string(d.Name), request.ID,
			"New "+string(d.Name)+" request submitted", nil, createdByID)

		c.JSON(http.StatusCreated, gin.H{"message": "Request created successfully", "request": request})
	}
}

// ListRequests returns every request in the domain, newest first. Admin only.
func ListRequests(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.GetCollection(d.Collection).Find(ctx, bson.M{}, findOptions)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve requests"})
			return
		}
		defer cursor.Close(ctx)

		var requests []models.ServiceRequest
		if err := cursor.All(ctx, &requests); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode requests"})
			return
		}

		// Enhance with requester and worker identities for the admin board
		type RequestWithIdentities struct {
			models.ServiceRequest
			CreatedBy  gin.H `json:"createdBy"`
			AssignedTo gin.H `json:"assignedTo,omitempty"`
		}

		response := make([]RequestWithIdentities, 0, len(requests))
		for _, request := range requests {
			item := RequestWithIdentities{
				ServiceRequest: request,
				CreatedBy:      resolveUserProfile(ctx, request.CreatedBy),
			}
			if request.AssignedTo != nil {
				item.AssignedTo = resolveUserProfile(ctx, *request.AssignedTo)
			}
			response = append(response, item)
		}

		c.JSON(http.StatusOK, response)
	}
}

// ListMyRequests returns the caller's own requests, newest first. The citizen
// sees the verification pin here; it is their proof-of-completion secret.
func ListMyRequests(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		userObjID, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.GetCollection(d.Collection).Find(ctx, bson.M{"createdBy": userObjID}, findOptions)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve requests"})
			return
		}
		defer cursor.Close(ctx)

		requests := []models.ServiceRequest{}
		if err := cursor.All(ctx, &requests); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode requests"})
			return
		}

		c.JSON(http.StatusOK, requests)
	}
}

// ListAssignedRequests returns the requests assigned to the calling worker.
// The verification pin is projected out: the worker must get it from the
// citizen on site, not from the API.
func ListAssignedRequests(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		workerObjID, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetProjection(bson.M{"verificationPin": 0})

		cursor, err := config.GetCollection(d.Collection).Find(ctx, bson.M{"assignedTo": workerObjID}, findOptions)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve requests"})
			return
		}
		defer cursor.Close(ctx)

		requests := []models.ServiceRequest{}
		if err := cursor.All(ctx, &requests); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode requests"})
			return
		}

		c.JSON(http.StatusOK, requests)
	}
}

// GetRequest returns a single request. Visible to its owner, the assigned
// worker and admins; the pin is blanked for the worker.
func GetRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		userObjID, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		isOwner := request.CreatedBy == userObjID
		isAssigned := request.AssignedTo != nil && *request.AssignedTo == userObjID
		if !isOwner && !isAssigned && !isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"message": "You are not authorized to view this request"})
			return
		}

		if isAssigned && !isOwner && !isAdmin(c) {
			request.VerificationPin = ""
		}

		c.JSON(http.StatusOK, request)
	}
}

// UpdateRequest is the admin's direct field patch. Status values are checked
// against the domain vocabulary but transitions are not otherwise restricted.
func UpdateRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminObjID, ok := callerID(c)
		if !ok {
			return
		}

		var input struct {
			Name      *string  `json:"name,omitempty"`
			Address   *string  `json:"address,omitempty"`
			Phone     *string  `json:"phone,omitempty"`
			WasteType *string  `json:"wasteType,omitempty"`
			IssueType *string  `json:"issueType,omitempty"`
			Status    *string  `json:"status,omitempty"`
			Latitude  *float64 `json:"latitude,omitempty"`
			Longitude *float64 `json:"longitude,omitempty"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": bindingErrors(err)})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if input.Name != nil {
			update["name"] = *input.Name
		}
		if input.Address != nil {
			update["address"] = *input.Address
		}
		if input.Phone != nil {
			update["phone"] = *input.Phone
		}
		if d.Name == models.DomainWaste && input.WasteType != nil {
			if !d.TypeValues[*input.WasteType] {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + d.TypeField})
				return
			}
			update["wasteType"] = *input.WasteType
		}
		if d.Name == models.DomainWater && input.IssueType != nil {
			if !d.TypeValues[*input.IssueType] {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + d.TypeField})
				return
			}
			update["issueType"] = *input.IssueType
		}
		if input.Status != nil {
			if !d.Name.ValidStatus(*input.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
				return
			}
			update["status"] = *input.Status
		}
		if input.Latitude != nil {
			update["latitude"] = *input.Latitude
		}
		if input.Longitude != nil {
			update["longitude"] = *input.Longitude
		}

		var updated models.ServiceRequest
		err := config.GetCollection(d.Collection).FindOneAndUpdate(ctx,
			bson.M{"_id": request.ID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update request"})
			return
		}

		RecordActivity("update", string(d.Name), request.ID,
			"Request details updated by admin", bson.M{"fields": updateKeys(update)}, adminObjID)

		c.JSON(http.StatusOK, gin.H{"message": "Request updated successfully", "request": updated})
	}
}

func updateKeys(update bson.M) []string {
	keys := make([]string, 0, len(update))
	for k := range update {
		if k == "updatedAt" {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// DeleteRequest hard-deletes a request. Admin only; the deletion is logged.
func DeleteRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminObjID, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		_, err := config.GetCollection(d.Collection).DeleteOne(ctx, bson.M{"_id": request.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete request"})
			return
		}

		RecordActivity("delete", string(d.Name), request.ID,
			"Request deleted by admin", nil, adminObjID)

		c.JSON(http.StatusOK, gin.H{"message": "Request deleted successfully"})
	}
}

// ScheduleRequest records the admin-chosen time for the collection or visit.
func ScheduleRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminObjID, ok := callerID(c)
		if !ok {
			return
		}

		var input struct {
			ScheduledTime time.Time `json:"scheduledTime" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": []string{"scheduledTime is required"}})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		if err := request.Schedule(input.ScheduledTime, adminObjID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Request is already resolved"})
			return
		}

		_, err := config.GetCollection(d.Collection).UpdateOne(ctx,
			bson.M{"_id": request.ID},
			bson.M{"$set": bson.M{
				"scheduledTime": request.ScheduledTime,
				"scheduledBy":   request.ScheduledBy,
				"status":        request.Status,
				"updatedAt":     time.Now(),
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to schedule request"})
			return
		}

		RecordActivity("schedule", string(d.Name), request.ID,
			"Request scheduled for "+input.ScheduledTime.Format(time.RFC3339),
			bson.M{"scheduledTime": input.ScheduledTime}, adminObjID)

		c.JSON(http.StatusOK, gin.H{"message": "Request scheduled successfully", "request": request})
	}
}

// AssignRequest binds a request to a worker identity. Assignment always moves
// the request to scheduled, even when no scheduledTime has been set.
func AssignRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminObjID, ok := callerID(c)
		if !ok {
			return
		}

		var input struct {
			WorkerID string `json:"workerId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": []string{"workerId is required"}})
			return
		}

		workerObjID, err := primitive.ObjectIDFromHex(input.WorkerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid worker ID"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var worker models.User
		err = config.GetCollection("users").FindOne(ctx, bson.M{
			"_id":  workerObjID,
			"role": models.RoleWorker,
		}).Decode(&worker)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Worker not found"})
			return
		}

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		if err := request.Assign(workerObjID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Request is already resolved"})
			return
		}

		_, err = config.GetCollection(d.Collection).UpdateOne(ctx,
			bson.M{"_id": request.ID},
			bson.M{"$set": bson.M{
				"assignedTo": request.AssignedTo,
				"status":     request.Status,
				"updatedAt":  time.Now(),
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to assign request"})
			return
		}

		RecordActivity("assign", string(d.Name), request.ID,
			"Request assigned to "+worker.Name, bson.M{"workerId": workerObjID}, adminObjID)

		// Embed the worker's profile so the admin board can show who got the job
		type RequestWithWorker struct {
			models.ServiceRequest
			AssignedTo gin.H `json:"assignedTo"`
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Request assigned successfully",
			"request": RequestWithWorker{
				ServiceRequest: *request,
				AssignedTo: gin.H{
					"id":    worker.ID,
					"name":  worker.Name,
					"email": worker.Email,
					"phone": worker.Phone,
				},
			},
		})
	}
}

// ReportRequest appends a citizen escalation. Only a report filed after the
// scheduled time flips the request into the domain's failure state; an early
// report is kept but leaves the status alone.
func ReportRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		userObjID, ok := callerID(c)
		if !ok {
			return
		}

		var input struct {
			Reason string `json:"reason" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Reason) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": []string{"reason is required"}})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		if request.CreatedBy != userObjID {
			c.JSON(http.StatusForbidden, gin.H{"message": "You can only report your own requests"})
			return
		}

		flipped, err := request.AddReport(userObjID, input.Reason, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Request cannot be reported in its current state"})
			return
		}

		_, err = config.GetCollection(d.Collection).UpdateOne(ctx,
			bson.M{"_id": request.ID},
			bson.M{"$set": bson.M{
				"reports":   request.Reports,
				"status":    request.Status,
				"updatedAt": time.Now(),
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit report"})
			return
		}

		RecordActivity("report", string(d.Name), request.ID,
			"Citizen reported the request as not resolved",
			bson.M{"statusChanged": flipped}, userObjID)

		c.JSON(http.StatusOK, gin.H{"message": "Report submitted successfully", "request": request})
	}
}

// VerifyRequest closes a request once the worker presents the citizen's pin.
// Wrong pins never mutate the request, and there is no attempt limit.
func VerifyRequest(d Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		userObjID, ok := callerID(c)
		if !ok {
			return
		}

		var input struct {
			Pin string `json:"pin" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": []string{"pin is required"}})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, ok := fetchRequest(c, ctx, d)
		if !ok {
			return
		}

		isAssigned := request.AssignedTo != nil && *request.AssignedTo == userObjID
		if !isAssigned && !isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"message": "You are not assigned to this request"})
			return
		}

		if err := request.Verify(input.Pin, time.Now()); err != nil {
			switch err {
			case models.ErrInvalidPin:
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid PIN. Please ask the citizen for the correct code."})
			case models.ErrAlreadyResolved:
				c.JSON(http.StatusBadRequest, gin.H{"message": "Request is already resolved"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify request"})
			}
			return
		}

		_, err := config.GetCollection(d.Collection).UpdateOne(ctx,
			bson.M{"_id": request.ID},
			bson.M{"$set": bson.M{
				"status":         request.Status,
				"completionDate": request.CompletionDate,
				"updatedAt":      time.Now(),
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify request"})
			return
		}

		RecordActivity("verify", string(d.Name), request.ID,
			"Request verified and closed with citizen pin", nil, userObjID)

		c.JSON(http.StatusOK, gin.H{"message": "Request verified successfully", "request": request})
	}
}
