package catalog

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"fournil/db"
	"fournil/mq"
	"fournil/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const pastryPicDir = "./static/pastrypic"

// UploadPastryImages accepts a multipart form under the "images" key, stores
// a full-size JPEG plus a 300px-wide thumbnail per file and appends the
// public paths to the pastry's image list.
func (api *API) UploadPastryImages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id := ps.ByName("id")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No image files provided")
		return
	}

	var paths []string
	for _, file := range files {
		path, err := saveImage(file)
		if err != nil {
			log.Println("UploadPastryImages save error:", err)
			utils.RespondWithError(w, http.StatusBadRequest, "Failed to process image file")
			return
		}
		paths = append(paths, path)
	}

	res, err := db.PastryCollection.UpdateOne(ctx,
		bson.M{"pastryid": id},
		bson.M{
			"$push": bson.M{"images": bson.M{"$each": paths}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		log.Println("UploadPastryImages update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to attach images")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Pastry not found")
		return
	}

	mq.Emit(ctx, "pastry-updated", id)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"images": paths})
}

func saveImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	fileName := utils.GetUUID() + ".jpg"
	originalPath := filepath.Join(pastryPicDir, fileName)
	thumbDir := filepath.Join(pastryPicDir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, fileName)

	if err := ensureDirExists(pastryPicDir); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := ensureDirExists(thumbDir); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/pastrypic/" + fileName, nil
}

func ensureDirExists(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
