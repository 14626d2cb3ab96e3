package endpoint

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/xyzhospital/frontdesk/middleware"
	"github.com/xyzhospital/frontdesk/model"
	"github.com/xyzhospital/frontdesk/util"
)

// currentDate returns today's date in the YYYY-MM-DD format the
// date_of_joining column stores.
func currentDate() string {
	return time.Now().Format("2006-01-02")
}

func fetchPatients(db *gorm.DB) ([]model.Patient, error) {
	var patients []model.Patient
	// Full table scan in natural store order, no explicit sort.
	err := db.Find(&patients).Error
	return patients, err
}

// ListPatients renders the roster of all patients.
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patients, err := fetchPatients(db)
	if err != nil {
		util.RenderServerError(c, util.PageErrorParams{Msg: "Failed to retrieve patients", Err: err})
		return
	}

	c.HTML(http.StatusOK, "patients.html", gin.H{
		"pageTitle": "patients details",
		"patients":  patients,
	})
}

// lookupPatient fetches one patient by primary key. The bool result
// distinguishes "not found" (false, nil error) from a store failure.
func lookupPatient(db *gorm.DB, id string) (model.Patient, bool, error) {
	var patient model.Patient
	err := db.First(&patient, "patient_id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return model.Patient{}, false, nil
	}
	if err != nil {
		return model.Patient{}, false, err
	}
	return patient, true, nil
}

// UpdateDetailsForm handles GET /updateDetails. Without an id query
// parameter it renders the blank lookup form; with one it loads the
// record for editing. A missing record renders a plain message with
// HTTP 200, not a 404.
func UpdateDetailsForm(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.HTML(http.StatusOK, "updatePatientDetails.html", gin.H{
			"pageTitle": "update patient details",
			"dataSet":   false,
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patient, found, err := lookupPatient(db, id)
	if err != nil {
		util.RenderServerError(c, util.PageErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return
	}
	if !found {
		util.RenderMessage(c, "update patient details", "no such records found!")
		return
	}

	c.HTML(http.StatusOK, "updatePatientDetails.html", gin.H{
		"pageTitle": "update patient details",
		"dataSet":   true,
		"patient":   patient,
	})
}

// UpdateDetails applies the edit form. Every editable field is
// overwritten with whatever was submitted; empty or malformed values
// pass through (non-numeric ssn/age become 0). patient_id,
// date_of_joining, and status are never part of the update. All values
// are bound parameters.
func UpdateDetails(c *gin.Context) {
	id := c.PostForm("p_id")

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ssn, _ := strconv.ParseInt(c.PostForm("p_ssn"), 10, 64)
	age, _ := strconv.Atoi(c.PostForm("p_age"))

	updates := map[string]interface{}{
		"ssn":               ssn,
		"name":              c.PostForm("p_name"),
		"age":               age,
		"address":           c.PostForm("p_addr"),
		"registration_type": c.PostForm("p_rtype"),
	}

	if err := db.Model(&model.Patient{}).Where("patient_id = ?", id).Updates(updates).Error; err != nil {
		util.RenderServerError(c, util.PageErrorParams{Msg: "Failed to update patient", Err: err})
		return
	}

	if identity, ok := middleware.GetSessionUser(c); ok {
		util.LogAuditEvent(util.AuditEvent{
			EventType: util.EventPatientUpdated,
			UserID:    identity.UserID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   "Patient record updated",
			Details:   map[string]interface{}{"patient_id": id},
		})
	}

	util.RenderMessage(c, "update patient details", "updated!")
}

// AddNewPatientForm renders the patient creation form.
func AddNewPatientForm(c *gin.Context) {
	c.HTML(http.StatusOK, "addnewpatients.html", gin.H{
		"pageTitle": "add new patient",
	})
}

// AddNewPatient inserts a new patient row. The join date is stamped
// server-side as today and status is fixed to 1. A uniqueness violation
// on ssn surfaces as the generic store-error page.
func AddNewPatient(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ssn, _ := strconv.ParseInt(c.PostForm("p_ssn"), 10, 64)
	age, _ := strconv.Atoi(c.PostForm("p_age"))

	patient := model.Patient{
		SSN:              ssn,
		Name:             c.PostForm("p_name"),
		Address:          c.PostForm("p_addr"),
		Age:              age,
		DateOfJoining:    currentDate(),
		RegistrationType: c.PostForm("p_rtype"),
		Status:           1,
	}

	if err := db.Create(&patient).Error; err != nil {
		util.RenderServerError(c, util.PageErrorParams{Msg: "Failed to create patient", Err: err})
		return
	}

	if identity, ok := middleware.GetSessionUser(c); ok {
		util.LogAuditEvent(util.AuditEvent{
			EventType: util.EventPatientCreated,
			UserID:    identity.UserID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   "Patient record created",
			Details:   map[string]interface{}{"patient_id": patient.PatientID},
		})
	}

	c.Redirect(http.StatusFound, "/patients")
}

// PatientAddress returns a patient's bare address as plain text. Gated by
// the session middleware like every other data route.
func PatientAddress(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patient, found, err := lookupPatient(db, c.Param("id"))
	if err != nil {
		util.RenderServerError(c, util.PageErrorParams{Msg: "Failed to retrieve patient", Err: err})
		return
	}
	if !found {
		util.RenderMessage(c, "patient", "no such records found!")
		return
	}

	c.String(http.StatusOK, patient.Address)
}
