package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	salesdomain "github.com/truestate/sales-backend/internal/sales/domain"
)

type listTransactionsQuery struct {
	Search            string `form:"search"`
	CustomerRegions   string `form:"customer_regions"`
	Genders           string `form:"genders"`
	AgeMin            string `form:"age_min"`
	AgeMax            string `form:"age_max"`
	ProductCategories string `form:"product_categories"`
	Tags              string `form:"tags"`
	PaymentMethods    string `form:"payment_methods"`
	DateFrom          string `form:"date_from"`
	DateTo            string `form:"date_to"`
	SortBy            string `form:"sort_by,default=date_desc"`
	Page              int    `form:"page,default=1"`
	PageSize          int    `form:"page_size,default=10"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Pagination bounds are the only hard client errors; everything else is
	// permissive, including malformed date filters.
	if query.Page < 1 {
		AbortWithError(c, newValidationError("page", "invalid_page", "page must be at least 1"))
		return
	}
	if query.PageSize < salesdomain.MinPageSize || query.PageSize > salesdomain.MaxPageSize {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "page_size must be between 1 and 100"))
		return
	}

	ageMin, err := parseOptionalInt(query.AgeMin)
	if err != nil {
		AbortWithError(c, newValidationError("age_min", "invalid_age_min", "invalid age_min"))
		return
	}
	ageMax, err := parseOptionalInt(query.AgeMax)
	if err != nil {
		AbortWithError(c, newValidationError("age_max", "invalid_age_max", "invalid age_max"))
		return
	}

	resp, err := s.salesSvc.ListTransactions(c.Request.Context(), salesdomain.ListTransactionsRequest{
		Search:            query.Search,
		CustomerRegions:   splitCSV(query.CustomerRegions),
		Genders:           splitCSV(query.Genders),
		AgeMin:            ageMin,
		AgeMax:            ageMax,
		ProductCategories: splitCSV(query.ProductCategories),
		Tags:              splitCSV(query.Tags),
		PaymentMethods:    splitCSV(query.PaymentMethods),
		DateFrom:          query.DateFrom,
		DateTo:            query.DateTo,
		SortBy:            query.SortBy,
		Page:              query.Page,
		PageSize:          query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetFilterOptions(c *gin.Context) {
	resp, err := s.salesSvc.FilterOptions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
