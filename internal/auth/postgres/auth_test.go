package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/leave-management/internal"
	authPostgres "github.com/frahmantamala/leave-management/internal/auth/postgres"
	"github.com/frahmantamala/leave-management/internal/core/testdb"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAuthPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Postgres Suite")
}

var _ = Describe("Principal repository", func() {
	var repo *authPostgres.Repository

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		_, err = testdb.CreateUser(db, "lead@example.com", testdb.ManagerRoleID, 25)
		Expect(err).NotTo(HaveOccurred())
		repo = authPostgres.NewRepository(db)
	})

	It("should load the principal with its role", func() {
		u, err := repo.GetPrincipalByEmail(context.Background(), "lead@example.com")

		Expect(err).NotTo(HaveOccurred())
		Expect(u.ID).To(BeNumerically(">", 0))
		Expect(u.Role).To(Equal(coreuser.RoleManager))
	})

	It("should return ErrUserNotFound for an unknown email", func() {
		_, err := repo.GetPrincipalByEmail(context.Background(), "nobody@example.com")

		Expect(err).To(Equal(internal.ErrUserNotFound))
	})
})
