package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// WalletAuthMiddleware requires a checksummable EVM address in the
// X-Wallet-Address header and normalizes it into the context.
func WalletAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.GetHeader("X-Wallet-Address")
		if address == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet address is required in 'X-Wallet-Address' header"})
			c.Abort()
			return
		}
		if !common.IsHexAddress(address) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid wallet address"})
			c.Abort()
			return
		}
		c.Set("wallet", common.HexToAddress(address).Hex())
		c.Next()
	}
}
