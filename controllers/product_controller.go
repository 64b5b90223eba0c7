package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Aaenoor/eco-market-backend/models"
	"github.com/Aaenoor/eco-market-backend/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ProductController struct {
	Repo      repository.ProductRepository
	UploadDir string
	Logger    *zap.Logger
}

// GetProducts returns the full catalog.
func (pc *ProductController) GetProducts(c *gin.Context) {
	products, err := pc.Repo.FindAll(c.Request.Context())
	if err != nil {
		pc.Logger.Error("failed to load products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"productsData": products})
}

// GetFeaturedProducts returns the landing-page selection.
func (pc *ProductController) GetFeaturedProducts(c *gin.Context) {
	products, err := pc.Repo.FindFeatured(c.Request.Context(), 3)
	if err != nil {
		pc.Logger.Error("failed to load featured products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"productsData": products})
}

// GetProductDetails returns one product by id.
func (pc *ProductController) GetProductDetails(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := pc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct accepts a multipart form with the product fields and an
// image, stored under the upload directory with a timestamp-prefixed name.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}
	rating, _ := strconv.ParseFloat(c.PostForm("rating"), 64)

	file, err := c.FormFile("productImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productImage is required"})
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(pc.UploadDir, filename)); err != nil {
		pc.Logger.Error("failed to store product image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	product := &models.Product{
		Name:        c.PostForm("name"),
		Price:       price,
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Delivery:    c.PostForm("delivery"),
		Warranty:    c.PostForm("warranty"),
		Rating:      rating,
		Available:   c.PostForm("available") == "true",
		Image:       filename,
	}
	if err := pc.Repo.Create(c.Request.Context(), product); err != nil {
		pc.Logger.Error("failed to save product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// DeleteProduct removes a product by name along with its image file.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	product, err := pc.Repo.DeleteByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	if product.Image != "" {
		if err := os.Remove(filepath.Join(pc.UploadDir, product.Image)); err != nil && !os.IsNotExist(err) {
			pc.Logger.Warn("failed to remove product image",
				zap.String("image", product.Image),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}
