package services

import (
	"context"
	"log"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
	"PalMessenger/internal/repository"
)

// RelationshipService owns a user's contact and block lists. A login is
// never a member of both lists of the same owner: crossing the boundary
// requires an explicit confirmation flag and happens atomically.
type RelationshipService interface {
	AddContact(ctx context.Context, owner, target string, confirmRemoveFromBlock bool) error
	AddBlock(ctx context.Context, owner, target string, confirmRemoveFromContact bool) error
	RemoveContact(ctx context.Context, owner, target string) error
	RemoveBlock(ctx context.Context, owner, target string) error
	ListContacts(ctx context.Context, owner string) ([]models.RelationRow, error)
	ListBlocks(ctx context.Context, owner string) ([]models.RelationRow, error)
}

type relationshipService struct {
	users     repository.UserRepository
	relations repository.RelationRepository
	txManager db.TxManager
}

func NewRelationshipService(
	users repository.UserRepository,
	relations repository.RelationRepository,
	txManager db.TxManager,
) RelationshipService {
	return &relationshipService{
		users:     users,
		relations: relations,
		txManager: txManager,
	}
}

func (rs *relationshipService) AddContact(ctx context.Context, owner, target string, confirmRemoveFromBlock bool) error {
	return rs.add(ctx, owner, target, confirmRemoveFromBlock, models.ListKindContact)
}

func (rs *relationshipService) AddBlock(ctx context.Context, owner, target string, confirmRemoveFromContact bool) error {
	return rs.add(ctx, owner, target, confirmRemoveFromContact, models.ListKindBlock)
}

// add moves target into one of owner's lists. The two lists are
// mirrored: adding to one may require confirmed removal from the other.
func (rs *relationshipService) add(ctx context.Context, owner, target string, confirmed bool, kind string) error {
	if target == "" {
		return models.ErrValidation
	}
	if target == owner {
		return models.ErrSelfReference
	}

	return rs.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		ownerUser, err := rs.users.GetByLogin(ctx, owner)
		if err != nil {
			return err
		}

		exists, err := rs.users.Exists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			log.Printf("User %s tried to add unknown login %s", owner, target)
			return models.ErrUserNotFound
		}

		destID, otherID := ownerUser.ContactListID, ownerUser.BlockListID
		if kind == models.ListKindBlock {
			destID, otherID = ownerUser.BlockListID, ownerUser.ContactListID
		}

		inDest, err := rs.relations.IsMember(ctx, destID, target)
		if err != nil {
			return err
		}
		if inDest {
			return models.ErrAlreadyRelated
		}

		inOther, err := rs.relations.IsMember(ctx, otherID, target)
		if err != nil {
			return err
		}
		if inOther {
			if !confirmed {
				log.Printf("Moving %s between lists of %s needs confirmation", target, owner)
				return models.ErrConfirmationRequired
			}
			if _, err := rs.relations.Remove(ctx, otherID, target); err != nil {
				return err
			}
		}

		if err := rs.relations.Add(ctx, destID, target); err != nil {
			return err
		}

		log.Printf("User %s added %s to %s list", owner, target, kind)
		return nil
	})
}

func (rs *relationshipService) RemoveContact(ctx context.Context, owner, target string) error {
	return rs.remove(ctx, owner, target, models.ListKindContact)
}

func (rs *relationshipService) RemoveBlock(ctx context.Context, owner, target string) error {
	return rs.remove(ctx, owner, target, models.ListKindBlock)
}

func (rs *relationshipService) remove(ctx context.Context, owner, target, kind string) error {
	if target == "" {
		return models.ErrValidation
	}

	return rs.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		ownerUser, err := rs.users.GetByLogin(ctx, owner)
		if err != nil {
			return err
		}

		listID := ownerUser.ContactListID
		if kind == models.ListKindBlock {
			listID = ownerUser.BlockListID
		}

		removed, err := rs.relations.Remove(ctx, listID, target)
		if err != nil {
			return err
		}
		if !removed {
			return models.ErrNotInList
		}

		log.Printf("User %s removed %s from %s list", owner, target, kind)
		return nil
	})
}

func (rs *relationshipService) ListContacts(ctx context.Context, owner string) ([]models.RelationRow, error) {
	return rs.list(ctx, owner, models.ListKindContact)
}

func (rs *relationshipService) ListBlocks(ctx context.Context, owner string) ([]models.RelationRow, error) {
	return rs.list(ctx, owner, models.ListKindBlock)
}

func (rs *relationshipService) list(ctx context.Context, owner, kind string) ([]models.RelationRow, error) {
	ownerUser, err := rs.users.GetByLogin(ctx, owner)
	if err != nil {
		return nil, err
	}

	listID := ownerUser.ContactListID
	if kind == models.ListKindBlock {
		listID = ownerUser.BlockListID
	}

	// An empty list is a valid result, not an error.
	return rs.relations.ListMembers(ctx, listID)
}
