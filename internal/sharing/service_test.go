package sharing_test

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/drive-sharing/internal/core/events"
	"github.com/frahmantamala/drive-sharing/internal/directory"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	"github.com/frahmantamala/drive-sharing/internal/sharing/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sharing Service", func() {
	var (
		ctx       context.Context
		ledger    *memory.Ledger
		users     *fakeDirectory
		publisher *recordingPublisher
		service   *sharing.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		ledger = memory.NewLedger()
		users = newFakeDirectory(
			&directory.User{ID: 1, Email: "a@x.com", GivenName: "Ann", IsActive: true},
			&directory.User{ID: 2, Email: "b@x.com", GivenName: "Bob", IsActive: true},
			&directory.User{ID: 3, Email: "c@x.com", GivenName: "Cid", IsActive: true},
		)
		publisher = &recordingPublisher{}
		service = sharing.NewService(ledger, users, publisher, quietLogger, 0)
	})

	Describe("ShareItem", func() {
		It("records an active grant for the grantee", func() {
			before := time.Now()

			grant, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)

			Expect(err).NotTo(HaveOccurred())
			Expect(grant.ID).To(BeNumerically(">", 0))
			Expect(grant.Target).To(Equal(sharing.File(10)))
			Expect(grant.OwnerID).To(Equal(int64(1)))
			Expect(grant.GranteeID).To(Equal(int64(2)))
			Expect(grant.AccessLevelID).To(Equal(sharing.AccessViewer))
			Expect(grant.Active).To(BeTrue())
			Expect(grant.GrantedAt).To(BeTemporally(">=", before))

			listed, err := service.ListGrantsForItem(ctx, sharing.File(10), sharing.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].ID).To(Equal(grant.ID))
			Expect(listed[0].GranteeID).To(Equal(int64(2)))
			Expect(listed[0].Active).To(BeTrue())
		})

		It("matches the grantee email case-insensitively", func() {
			grant, err := service.ShareItem(ctx, 1, sharing.Folder(4), "B@X.COM", sharing.AccessEditor)

			Expect(err).NotTo(HaveOccurred())
			Expect(grant.GranteeID).To(Equal(int64(2)))
			Expect(grant.Target.Kind()).To(Equal(sharing.TargetFolder))
		})

		It("rejects a second active grant for the same target and grantee", func() {
			_, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessEditor)

			Expect(err).To(MatchError(sharing.ErrDuplicateGrant))
			Expect(ledger.Len()).To(Equal(1))
		})

		It("treats a file and a folder with the same id as different targets", func() {
			_, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ShareItem(ctx, 1, sharing.Folder(10), "b@x.com", sharing.AccessViewer)

			Expect(err).NotTo(HaveOccurred())
			Expect(ledger.Len()).To(Equal(2))
		})

		It("fails with UserNotFound for an unknown email and records nothing", func() {
			_, err := service.ShareItem(ctx, 1, sharing.File(10), "nobody@x.com", sharing.AccessViewer)

			Expect(err).To(MatchError(sharing.ErrUserNotFound))
			Expect(ledger.Len()).To(Equal(0))
			Expect(publisher.types()).To(BeEmpty())
		})

		It("rejects an access level outside the registry", func() {
			_, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", 4)

			Expect(err).To(MatchError(sharing.ErrInvalidAccessLevel))
			Expect(ledger.Len()).To(Equal(0))
		})

		It("rejects the zero target", func() {
			_, err := service.ShareItem(ctx, 1, sharing.TargetRef{}, "b@x.com", sharing.AccessViewer)

			Expect(err).To(MatchError(sharing.ErrInvalidTarget))
		})

		It("allows sharing again after the grant was revoked", func() {
			first, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.RevokeAccess(ctx, first.ID)).To(Succeed())

			second, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessCommenter)

			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).NotTo(Equal(first.ID))
			Expect(ledger.Len()).To(Equal(2))
		})

		It("publishes a granted event", func() {
			grant, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.types()).To(Equal([]string{events.EventTypeShareGranted}))
			Expect(publisher.events[0].GrantID).To(Equal(grant.ID))
			Expect(publisher.events[0].TargetKind).To(Equal("file"))
			Expect(publisher.events[0].TargetID).To(Equal(int64(10)))
		})

		It("waits for the configured latency before recording", func() {
			service = sharing.NewService(ledger, users, nil, quietLogger, 20*time.Millisecond)
			start := time.Now()

			_, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)

			Expect(err).NotTo(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically(">=", 20*time.Millisecond))
		})

		It("lets exactly one of several concurrent identical shares succeed", func() {
			const attempts = 8
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
					if err == nil {
						mu.Lock()
						succeeded++
						mu.Unlock()
						return
					}
					Expect(err).To(MatchError(sharing.ErrDuplicateGrant))
				}()
			}
			wg.Wait()

			Expect(succeeded).To(Equal(1))
			Expect(ledger.Len()).To(Equal(1))
		})
	})

	Describe("UpdateAccess", func() {
		var grant *sharing.Grant

		BeforeEach(func() {
			var err error
			grant, err = service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())
		})

		It("changes only the access level", func() {
			updated, err := service.UpdateAccess(ctx, grant.ID, sharing.AccessEditor)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AccessLevelID).To(Equal(sharing.AccessEditor))
			Expect(updated.GrantedAt).To(Equal(grant.GrantedAt))
			Expect(updated.Active).To(BeTrue())

			stored, err := service.GetGrant(ctx, grant.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.AccessLevelID).To(Equal(sharing.AccessEditor))
			Expect(stored.GrantedAt).To(Equal(grant.GrantedAt))
			Expect(publisher.types()).To(ContainElement(events.EventTypeShareAccessUpdated))
		})

		It("fails with GrantNotFound for an unknown id and leaves the ledger alone", func() {
			_, err := service.UpdateAccess(ctx, 999, sharing.AccessEditor)

			Expect(err).To(MatchError(sharing.ErrGrantNotFound))
			Expect(ledger.Len()).To(Equal(1))

			stored, err := service.GetGrant(ctx, grant.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.AccessLevelID).To(Equal(sharing.AccessViewer))
		})

		It("rejects an unknown level", func() {
			_, err := service.UpdateAccess(ctx, grant.ID, 0)

			Expect(err).To(MatchError(sharing.ErrInvalidAccessLevel))
		})

		It("updates a revoked grant without reactivating it", func() {
			Expect(service.RevokeAccess(ctx, grant.ID)).To(Succeed())

			updated, err := service.UpdateAccess(ctx, grant.ID, sharing.AccessCommenter)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Active).To(BeFalse())
			Expect(updated.AccessLevelID).To(Equal(sharing.AccessCommenter))
		})
	})

	Describe("RevokeAccess", func() {
		var grant *sharing.Grant

		BeforeEach(func() {
			var err error
			grant, err = service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())
		})

		It("soft-deletes the grant", func() {
			Expect(service.RevokeAccess(ctx, grant.ID)).To(Succeed())

			stored, err := service.GetGrant(ctx, grant.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Active).To(BeFalse())
			Expect(ledger.Len()).To(Equal(1))
		})

		It("is excluded from active-only listings but kept in full listings", func() {
			Expect(service.RevokeAccess(ctx, grant.ID)).To(Succeed())

			active, err := service.ListSharedWithUser(ctx, 2, sharing.ListOptions{ActiveOnly: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())

			all, err := service.ListSharedWithUser(ctx, 2, sharing.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].Active).To(BeFalse())

			activeOnItem, err := service.ListGrantsForItem(ctx, sharing.File(10), sharing.ListOptions{ActiveOnly: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(activeOnItem).To(BeEmpty())
		})

		It("succeeds when the grant is already revoked and publishes once", func() {
			Expect(service.RevokeAccess(ctx, grant.ID)).To(Succeed())
			Expect(service.RevokeAccess(ctx, grant.ID)).To(Succeed())

			Expect(publisher.types()).To(Equal([]string{
				events.EventTypeShareGranted,
				events.EventTypeShareRevoked,
			}))
		})

		It("fails with GrantNotFound for an unknown id", func() {
			Expect(service.RevokeAccess(ctx, 42)).To(MatchError(sharing.ErrGrantNotFound))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			_, err := service.ShareItem(ctx, 1, sharing.File(10), "b@x.com", sharing.AccessViewer)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ShareItem(ctx, 1, sharing.File(10), "c@x.com", sharing.AccessEditor)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ShareItem(ctx, 3, sharing.Folder(7), "b@x.com", sharing.AccessCommenter)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists grants for an item in insertion order", func() {
			grants, err := service.ListGrantsForItem(ctx, sharing.File(10), sharing.ListOptions{})

			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(2))
			Expect(grants[0].GranteeID).To(Equal(int64(2)))
			Expect(grants[1].GranteeID).To(Equal(int64(3)))
		})

		It("returns nothing for an item that was never shared", func() {
			grants, err := service.ListGrantsForItem(ctx, sharing.Folder(10), sharing.ListOptions{})

			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())
		})

		It("rejects the zero target", func() {
			_, err := service.ListGrantsForItem(ctx, sharing.TargetRef{}, sharing.ListOptions{})

			Expect(err).To(MatchError(sharing.ErrInvalidTarget))
		})

		It("lists everything shared with a user across files and folders", func() {
			grants, err := service.ListSharedWithUser(ctx, 2, sharing.ListOptions{})

			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(2))
			Expect(grants[0].Target).To(Equal(sharing.File(10)))
			Expect(grants[1].Target).To(Equal(sharing.Folder(7)))
		})
	})

	Describe("SearchUsers", func() {
		It("returns nothing for a blank query", func() {
			found, err := service.SearchUsers(ctx, "   ")

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeEmpty())
		})

		It("delegates to the directory", func() {
			found, err := service.SearchUsers(ctx, "B@X")

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal(int64(2)))
		})
	})

	It("exposes the access level registry", func() {
		levels := service.AccessLevels()

		Expect(levels).To(HaveLen(3))
		Expect(levels[0].Name).To(Equal("Viewer"))
		Expect(levels[1].Name).To(Equal("Commenter"))
		Expect(levels[2].Name).To(Equal("Editor"))
	})
})
