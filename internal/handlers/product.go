package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/middleware"
	"kle_back_end/internal/services"
)

// GET /products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		fail(c, err, nil, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// POST /add-product
func (h *Handler) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product data"})
		return
	}

	product, err := h.Catalog.Create(c.Request.Context(), middleware.Claims(c), input)
	if err != nil {
		fail(c, err, statusTable{
			services.ErrAuth:       http.StatusUnauthorized,
			services.ErrValidation: http.StatusBadRequest,
		}, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// GET /product/:id
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.Catalog.Get(c.Request.Context(), middleware.Claims(c), c.Param("id"))
	if err != nil {
		fail(c, err, statusTable{
			services.ErrValidation: http.StatusBadRequest,
			services.ErrNotFound:   http.StatusBadRequest,
			services.ErrAuth:       http.StatusUnauthorized,
		}, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// PATCH /product/edit/:id {"productData": {...}} : toute erreur répond 400.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input struct {
		ProductData *services.ProductPatch `json:"productData"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productData is required"})
		return
	}

	if _, err := h.Catalog.Update(c.Request.Context(), middleware.Claims(c), c.Param("id"), *input.ProductData); err != nil {
		fail(c, err, nil, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product Updated Successfully"})
}

// DELETE /product/delete/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	product, err := h.Catalog.Delete(c.Request.Context(), middleware.Claims(c), c.Param("id"))
	if err != nil {
		fail(c, err, statusTable{
			services.ErrAuth:      http.StatusUnauthorized,
			services.ErrNotFound:  http.StatusNotFound,
			services.ErrForbidden: http.StatusForbidden,
		}, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product Deleted Successfully",
		"product": product,
	})
}
