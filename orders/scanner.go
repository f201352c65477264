package orders

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fournil/db"
	"fournil/globals"
	"fournil/models"
	"fournil/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// allowedDrift bounds how old a scanned payload may be. Receipts are printed
// moments before pickup, so a generous window still rejects stale captures.
const allowedDrift = int64(24 * 60 * 60)

func sign(data string) string {
	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// GenerateQRPayload builds the signed pickup string:
// orderID|pickupCode|timestamp|signature.
func GenerateQRPayload(orderID, pickupCode string) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, pickupCode, time.Now().Unix())
	return fmt.Sprintf("%s|%s", data, sign(data))
}

// VerifyPickupQR checks a scanned payload: shape, timestamp window, then
// signature.
func VerifyPickupQR(payload string) (orderID, pickupCode string, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return "", "", errors.New("invalid QR format")
	}

	orderID = parts[0]
	pickupCode = parts[1]
	timestampStr := parts[2]
	signature := parts[3]

	ts, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return "", "", errors.New("invalid timestamp")
	}
	now := time.Now().Unix()
	if abs(now-ts) > allowedDrift {
		return "", "", errors.New("QR code expired or from the future")
	}

	data := fmt.Sprintf("%s|%s|%s", orderID, pickupCode, timestampStr)
	if !hmac.Equal([]byte(signature), []byte(sign(data))) {
		return "", "", errors.New("invalid signature")
	}

	return orderID, pickupCode, nil
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// VerifyPickup validates a scanned payload against the stored order and, when
// the order is READY, confirms the pickup. Counter staff scan, the customer
// walks away with the box.
func (api *API) VerifyPickup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload := r.URL.Query().Get("code")
	if payload == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "code is required")
		return
	}

	orderID, pickupCode, err := VerifyPickupQR(payload)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var order models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"orderid": orderID, "pickupCode": pickupCode}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Println("VerifyPickup fetch error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify pickup")
		return
	}

	if order.Status != models.StatusReady {
		utils.RespondWithError(w, http.StatusUnprocessableEntity,
			"Order is "+string(order.Status)+", not READY for pickup")
		return
	}

	var updated models.Order
	err = db.OrderCollection.FindOneAndUpdate(ctx,
		bson.M{"orderid": orderID, "status": models.StatusReady},
		bson.M{"$set": bson.M{
			"status":        models.StatusPickedUp,
			"paymentStatus": models.PaymentPaid,
			"updatedAt":     time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusConflict, "Order status changed concurrently")
			return
		}
		log.Println("VerifyPickup write error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify pickup")
		return
	}

	if api.Hub != nil {
		api.Hub.BroadcastStatus(orderID, updated.Status)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"verified": true, "order": updated})
}
