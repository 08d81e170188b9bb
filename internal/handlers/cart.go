package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/middleware"
	"kle_back_end/internal/services"
)

// GET /cart : "cart" vaut null tant que l'utilisateur n'a rien ajouté.
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.Carts.GetCart(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		fail(c, err, statusTable{
			services.ErrNotFound: http.StatusBadRequest,
			services.ErrAuth:     http.StatusUnauthorized,
		}, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// POST /cart/add {"products": ["<id>", ...]}
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		Products []string `json:"products"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Products == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "products must be a list of product ids"})
		return
	}

	cart, err := h.Carts.AddProducts(c.Request.Context(), middleware.Claims(c), input.Products)
	if err != nil {
		fail(c, err, statusTable{
			services.ErrNotFound: http.StatusBadRequest,
			services.ErrAuth:     http.StatusUnauthorized,
		}, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated successfully",
		"cart":    cart,
	})
}

// DELETE /cart/product/delete {"productID": "<id>"}
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"productID"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productID is required"})
		return
	}

	cart, err := h.Carts.RemoveProduct(c.Request.Context(), middleware.Claims(c), input.ProductID)
	if err != nil {
		fail(c, err, statusTable{
			services.ErrNotFound: http.StatusNotFound,
			services.ErrAuth:     http.StatusUnauthorized,
		}, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product Removed from Cart Successfully",
		"cart":    cart,
	})
}
