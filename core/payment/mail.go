package payment

import (
	"fmt"
	"net/mail"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/student"
)

func receiptEmail(st student.Student, f fee.Fee, p Payment) *core.EmailMessage {
	return &core.EmailMessage{
		To:      []mail.Address{{Name: st.Name(), Address: st.Email}},
		Subject: fmt.Sprintf("[%s] Payment received: %s", core.Conf.AppName, f.Description),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour payment of %.2f for %q was confirmed on %s.\n\nReference: %s\n",
			st.FirstName, f.Amount, f.Description, p.PaidAt.Format("Jan 2, 2006"), p.ID,
		),
	}
}
