// Package store groups the repository set a storage backend must provide.
package store

import "fundhub/internal/domain"

// Stores bundles one backend's repositories for wiring into the router.
type Stores struct {
	Users         domain.UserRepository
	Campaigns     domain.CampaignRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository
	Saved         domain.SavedCampaignRepository
}
