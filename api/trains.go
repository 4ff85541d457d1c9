package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const trainNotFound = "Train not found"

type TrainHandler struct {
	service catalog.CatalogUseCase
	log     *zap.Logger
}

// trainRequest is shared by create and update. Absent fields stay nil.
type trainRequest struct {
	TrainNumber   *string `json:"trainNumber"`
	TrainName     *string `json:"trainName"`
	Source        *string `json:"source"`
	Destination   *string `json:"destination"`
	DepartureTime *string `json:"departureTime"`
	ArrivalTime   *string `json:"arrivalTime"`
	Frequency     *string `json:"frequency"`
	BasePrice     number  `json:"basePrice"`
	TotalSeats    number  `json:"totalSeats"`
	Status        *string `json:"status"`
}

func NewTrainHandler(service catalog.CatalogUseCase, log *zap.Logger) *TrainHandler {
	return &TrainHandler{service: service, log: log}
}

// Register mounts the public reads on public and the mutations on admin.
func (h *TrainHandler) Register(public, admin *gin.RouterGroup) {
	public.GET("", h.list)
	public.GET("/:id", h.get)
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.remove)
}

func (h *TrainHandler) list(c *gin.Context) {
	filter := domain.TrainFilter{
		Source:      strings.TrimSpace(c.Query("source")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Query:       strings.TrimSpace(c.Query("q")),
		Status:      domain.TrainStatus(strings.TrimSpace(c.Query("status"))),
	}

	trains, err := h.service.ListTrains(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	if trains == nil {
		trains = []domain.Train{}
	}
	c.JSON(http.StatusOK, trains)
}

func (h *TrainHandler) get(c *gin.Context) {
	train, err := h.service.GetTrain(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	c.JSON(http.StatusOK, train)
}

func (h *TrainHandler) create(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	var train domain.Train
	patch.Apply(&train)

	created, err := h.service.CreateTrain(c.Request.Context(), train)
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TrainHandler) update(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}

	updated, err := h.service.UpdateTrain(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TrainHandler) remove(c *gin.Context) {
	if err := h.service.DeleteTrain(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Train deleted successfully"})
}

// patch converts the request, rejecting numeric fields that are present but not numbers.
func (r trainRequest) patch() (catalog.TrainPatch, error) {
	verr := &domain.ValidationError{}
	p := catalog.TrainPatch{
		TrainNumber:   r.TrainNumber,
		TrainName:     r.TrainName,
		Source:        r.Source,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
	}
	if r.Frequency != nil {
		f := domain.TrainFrequency(strings.TrimSpace(*r.Frequency))
		p.Frequency = &f
	}
	if r.Status != nil {
		s := domain.TrainStatus(strings.TrimSpace(*r.Status))
		p.Status = &s
	}
	if r.BasePrice.set {
		if v, ok := r.BasePrice.float(); ok {
			p.BasePrice = &v
		} else {
			verr.Add("basePrice", "basePrice must be a number")
		}
	}
	if r.TotalSeats.set {
		if v, ok := r.TotalSeats.integer(); ok {
			p.TotalSeats = &v
		} else {
			verr.Add("totalSeats", "totalSeats must be an integer")
		}
	}
	return p, verr.OrNil()
}
