package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workguard/api/handler"
)

func RegisterRoutes(r *gin.Engine, contractH *handler.ContractHandler, gatherer prometheus.Gatherer) {
	r.GET("/healthz", handler.Healthz)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		contract := api.Group("/contract")
		{
			contract.POST("/analyze", contractH.Analyze)
			contract.POST("/analyze_text", contractH.AnalyzeText)
			contract.GET("/list", contractH.List)
			contract.GET("/:id", contractH.Get)
			contract.DELETE("/:id", contractH.Delete)
		}
		risk := api.Group("/risk")
		{
			risk.POST("/search", contractH.SearchRisks)
		}
	}
}
