package handlers

import "medbook/utils"

// HandlerBundle groups all endpoint handlers and the auth they sit behind.
type HandlerBundle struct {
	Tokens   *utils.TokenIssuer
	DenyList *utils.TokenDenyList
	Health   *utils.HealthMonitor

	Users     *UserHandler
	Catalog   *CatalogHandler
	Schedules *ScheduleHandler
	Bookings  *BookingHandler
	Payments  *PaymentHandler
	Storage   *StorageHandler
	Contacts  *ContactHandler
	Admin     *AdminHandler
}
