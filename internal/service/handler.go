package service

import (
	"net/http"

	"connectrpc.com/connect"
)

// AdvisorServiceName is the fully-qualified name of the advisor service.
const AdvisorServiceName = "bizpulse.v1.AdvisorService"

// Procedure paths of the advisor service. Requests and responses are
// google.protobuf.Struct messages.
const (
	ComputeSnapshotProcedure   = "/" + AdvisorServiceName + "/ComputeSnapshot"
	GetForecastProcedure       = "/" + AdvisorServiceName + "/GetForecast"
	ListPeriodPresetsProcedure = "/" + AdvisorServiceName + "/ListPeriodPresets"
	ConverseProcedure          = "/" + AdvisorServiceName + "/Converse"
)

// NewAdvisorServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewAdvisorServiceHandler(svc *AdvisorService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ComputeSnapshotProcedure, connect.NewUnaryHandler(ComputeSnapshotProcedure, svc.ComputeSnapshot, opts...))
	mux.Handle(GetForecastProcedure, connect.NewUnaryHandler(GetForecastProcedure, svc.GetForecast, opts...))
	mux.Handle(ListPeriodPresetsProcedure, connect.NewUnaryHandler(ListPeriodPresetsProcedure, svc.ListPeriodPresets, opts...))
	mux.Handle(ConverseProcedure, connect.NewUnaryHandler(ConverseProcedure, svc.Converse, opts...))
	return "/" + AdvisorServiceName + "/", mux
}
