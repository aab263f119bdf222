package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// getStocks serves the preprocessed fundamentals document straight from
// the object store; the updater job produces it.
func (m ApiHandler) getStocks(c *gin.Context) {
	doc, err := m.PriceStore.GetPreprocessedData(c.Request.Context())
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if doc == nil {
		returnErrorJsonCode(fmt.Errorf("preprocessed data not found in object store"), c, 404)
		return
	}

	c.Data(200, "application/json", doc)
}
